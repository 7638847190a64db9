package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

type Server struct {
	addr   string
	lis    net.Listener
	Server *http.Server
}

func New(addr string, h http.Handler) *Server {
	return &Server{
		addr: addr,
		Server: &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start blocks until the server stops. A graceful Stop is not an error.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.lis = lis
	if err := s.Server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.Server.Shutdown(ctx)
}
