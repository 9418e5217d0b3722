package services

import (
	"context"
	"testing"
	"time"
)

type fakeRecognizer struct {
	transcript string
	delay      time.Duration
}

func (f *fakeRecognizer) Listen(ctx context.Context) (string, error) {
	select {
	case <-time.After(f.delay):
		return f.transcript, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestVoiceSession_EmitsOneFinalTranscript(t *testing.T) {
	got := make(chan string, 1)
	vs := StartVoiceCapture(&fakeRecognizer{transcript: "buy milk tomorrow"}, func(transcript string) {
		got <- transcript
	})

	select {
	case transcript := <-got:
		if transcript != "buy milk tomorrow" {
			t.Errorf("expected final transcript, got %q", transcript)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no transcript emitted")
	}
	<-vs.Done()
}

func TestVoiceSession_StopDiscardsResult(t *testing.T) {
	emitted := false
	vs := StartVoiceCapture(&fakeRecognizer{transcript: "never seen", delay: time.Hour}, func(string) {
		emitted = true
	})

	vs.Stop()
	if emitted {
		t.Error("stopped session must not emit a transcript")
	}
}

func TestVoiceSession_StopAfterResultIsNoOp(t *testing.T) {
	got := make(chan string, 1)
	vs := StartVoiceCapture(&fakeRecognizer{transcript: "done"}, func(transcript string) {
		got <- transcript
	})
	<-got
	vs.Stop()
	vs.Stop()
}
