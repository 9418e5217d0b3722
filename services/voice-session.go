package services

import "context"

// Recognizer is the external speech-recognition boundary. Listen blocks
// until a final transcript is available or the context is canceled.
type Recognizer interface {
	Listen(ctx context.Context) (string, error)
}

// VoiceSession is the one cancelable long-lived operation in the capture
// flow. It emits at most one final transcript; stopping it before the
// recognizer finishes discards the result.
type VoiceSession struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func StartVoiceCapture(recognizer Recognizer, onFinal func(transcript string)) *VoiceSession {
	ctx, cancel := context.WithCancel(context.Background())
	vs := &VoiceSession{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(vs.done)
		transcript, err := recognizer.Listen(ctx)
		if err != nil || ctx.Err() != nil {
			return
		}
		onFinal(transcript)
	}()
	return vs
}

// Stop cancels the session and waits for the listener goroutine to finish.
// Calling Stop after the transcript was delivered is a no-op.
func (vs *VoiceSession) Stop() {
	vs.cancel()
	<-vs.done
}

// Done reports completion, whether by final transcript or cancellation.
func (vs *VoiceSession) Done() <-chan struct{} {
	return vs.done
}
