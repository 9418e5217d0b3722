package repositories

import (
	"github.com/sujankapadia/snaplist/services"
)

// The concrete repositories must keep satisfying the store interfaces the
// services consume; a driver API drift here is a compile error, not a
// runtime surprise.
var (
	_ services.TaskStore         = (*TaskRepo)(nil)
	_ services.CategoryStore     = (*CategoryRepo)(nil)
	_ services.BlobStore         = (*BlobRepo)(nil)
	_ services.NotificationStore = (*NotificationRepo)(nil)
	_ services.Streams           = (*ChangeStreamer)(nil)
)
