package grpc

import (
	"time"

	"google.golang.org/grpc"

	"github.com/Billy-Davies-2/blt-leagues/internal/logger"
)

// Shutdown stops s gracefully and closes whatever is still open, such as
// WatchLeague streams, once timeout passes. It reports whether the graceful
// stop finished in time.
func Shutdown(s *grpc.Server, timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		logger.Warn("gRPC: Graceful stop timed out, closing open streams", "timeout", timeout)
		s.Stop()
		<-done
		return false
	}
}
