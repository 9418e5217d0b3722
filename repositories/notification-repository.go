package repositories

import (
	"os"
	"time"

	"github.com/sujankapadia/snaplist/logging"
	"github.com/sujankapadia/snaplist/models"

	"github.com/gocql/gocql"
)

// NotificationRepo keeps the dismissible error notices shown to the user.
// Cassandra's (user_id, created_at DESC) clustering gives the inbox its
// newest-first read order for free.
type NotificationRepo struct {
	session *gocql.Session
}

func NewNotificationRepo() (*NotificationRepo, error) {
	db := os.Getenv("CASS_DB")
	if db == "" {
		db = "127.0.0.1"
	}

	cluster := gocql.NewCluster(db)
	cluster.Keyspace = "system"
	session, err := cluster.CreateSession()
	if err != nil {
		logging.Logger.Errorf("Event ID: CASS_CONNECT_FAILED, Description: %v", err)
		return nil, err
	}

	err = session.Query(
		`CREATE KEYSPACE IF NOT EXISTS snaplist
         WITH replication = {
             'class': 'SimpleStrategy',
             'replication_factor': 1
         }`).Exec()
	if err != nil {
		logging.Logger.Errorf("Event ID: CASS_KEYSPACE_FAILED, Description: Failed to create keyspace: %v", err)
		return nil, err
	}
	session.Close()

	cluster.Keyspace = "snaplist"
	cluster.Consistency = gocql.One
	session, err = cluster.CreateSession()
	if err != nil {
		logging.Logger.Errorf("Event ID: CASS_CONNECT_FAILED, Description: Failed to connect to snaplist keyspace: %v", err)
		return nil, err
	}

	logging.Logger.Info("Event ID: CASS_CONNECTED, Description: Connected to Cassandra snaplist keyspace.")
	return &NotificationRepo{session: session}, nil
}

func (nr *NotificationRepo) CloseSession() {
	nr.session.Close()
	logging.Logger.Info("Event ID: CASS_SESSION_CLOSED, Description: Cassandra session closed.")
}

func (nr *NotificationRepo) CreateTable() {
	err := nr.session.Query(
		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID,
			user_id TEXT,
			username TEXT,
			message TEXT,
			created_at TIMESTAMP,
			is_read BOOLEAN,
			PRIMARY KEY ((user_id), created_at, id)
		) WITH CLUSTERING ORDER BY (created_at DESC, id ASC)`).Exec()
	if err != nil {
		logging.Logger.Errorf("Event ID: CASS_TABLE_FAILED, Description: Failed to create notifications table: %v", err)
	} else {
		logging.Logger.Info("Event ID: CASS_TABLE_READY, Description: Notifications table ready.")
	}
}

func (nr *NotificationRepo) CreateNotification(notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = gocql.TimeUUID().String()
	}

	err := nr.session.Query(
		`INSERT INTO notifications (id, user_id, username, message, created_at, is_read)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		notification.ID, notification.UserID, notification.Username, notification.Message, notification.CreatedAt, notification.IsRead,
	).Exec()
	if err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_CREATE_FAILED, Description: %v", err)
		return err
	}
	return nil
}

func (nr *NotificationRepo) GetNotificationsByUserID(userID string) ([]models.Notification, error) {
	query := `SELECT id, user_id, username, message, created_at, is_read
			  FROM notifications WHERE user_id = ?`

	iter := nr.session.Query(query, userID).Iter()
	var notifications []models.Notification
	var notification models.Notification

	for iter.Scan(&notification.ID, &notification.UserID, &notification.Username,
		&notification.Message, &notification.CreatedAt, &notification.IsRead) {
		notifications = append(notifications, notification)
	}

	if err := iter.Close(); err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_FETCH_FAILED, Description: %v", err)
		return nil, err
	}
	return notifications, nil
}

func (nr *NotificationRepo) MarkNotificationAsRead(userID, notificationID, createdAt string) error {
	uuid, err := gocql.ParseUUID(notificationID)
	if err != nil {
		return err
	}

	parsedCreatedAt, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return err
	}

	query := `UPDATE notifications SET is_read = true WHERE user_id = ? AND created_at = ? AND id = ?`
	if err := nr.session.Query(query, userID, parsedCreatedAt, uuid).Exec(); err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_UPDATE_FAILED, Description: %v", err)
		return err
	}
	return nil
}

func (nr *NotificationRepo) DeleteNotification(userID, notificationID, createdAt string) error {
	uuid, err := gocql.ParseUUID(notificationID)
	if err != nil {
		return err
	}

	parsedCreatedAt, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return err
	}

	query := `DELETE FROM notifications WHERE user_id = ? AND created_at = ? AND id = ?`
	if err := nr.session.Query(query, userID, parsedCreatedAt, uuid).Exec(); err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_DELETE_FAILED, Description: %v", err)
		return err
	}
	return nil
}
