package grpcserver

import (
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type Server struct {
	addr   string
	lis    net.Listener
	Server *grpc.Server
	Health *health.Server
}

func New(addr string, opts ...grpc.ServerOption) *Server {
	s := grpc.NewServer(opts...)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	return &Server{
		addr:   addr,
		Server: s,
		Health: hs,
	}
}

func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.lis = lis
	return s.Server.Serve(lis)
}

func (s *Server) Stop() {
	s.Health.Shutdown()
	s.Server.GracefulStop()
	if s.lis != nil {
		_ = s.lis.Close()
	}
}
