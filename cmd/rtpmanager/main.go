// Command rtpmanager is the media node: it owns RTP ports, negotiates
// codecs, streams audio playback, and detects DTMF, controlled over
// gRPC by the call process.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/peer"

	"github.com/sebas/callcore/internal/banner"
	"github.com/sebas/callcore/internal/logger"
	"github.com/sebas/callcore/internal/rtpmanager/config"
	"github.com/sebas/callcore/internal/rtpmanager/server"
	rtpv1 "github.com/sebas/callcore/pkg/rtpmanager/v1"
)

func main() {
	logger.InitLogger(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)

	banner.Print("RTP MANAGER", []banner.ConfigLine{
		{Label: "gRPC Listen", Value: fmt.Sprintf("%s:%d", cfg.GRPCBindAddr, cfg.GRPCPort)},
		{Label: "Advertise", Value: cfg.AdvertiseAddr},
		{Label: "RTP Range", Value: fmt.Sprintf("%d-%d", cfg.RTPPortMin, cfg.RTPPortMax)},
		{Label: "Audio Path", Value: cfg.AudioBasePath},
		{Label: "Log Level", Value: cfg.LogLevel},
	})

	srvCfg := &server.Config{
		GRPCPort:      cfg.GRPCPort,
		GRPCBindAddr:  cfg.GRPCBindAddr,
		AdvertiseAddr: cfg.AdvertiseAddr,
		RTPPortMin:    cfg.RTPPortMin,
		RTPPortMax:    cfg.RTPPortMax,
		AudioBasePath: cfg.AudioBasePath,
	}

	rtpSrv, err := server.NewServer(srvCfg)
	if err != nil {
		slog.Error("Failed to create RTP Manager server", "error", err)
		os.Exit(1)
	}
	defer func() { _ = rtpSrv.Close() }()

	grpcServer := grpc.NewServer(
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    30 * time.Second,
			Timeout: 10 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             10 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.UnaryInterceptor(loggingUnaryInterceptor),
		grpc.StreamInterceptor(loggingStreamInterceptor),
	)
	rtpv1.RegisterRTPManagerServiceServer(grpcServer, rtpSrv)

	listenAddr := fmt.Sprintf("%s:%d", cfg.GRPCBindAddr, cfg.GRPCPort)
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		slog.Error("Failed to listen", "address", listenAddr, "error", err)
		os.Exit(1)
	}

	slog.Info("gRPC server listening", "address", listenAddr)

	go func() {
		if err := grpcServer.Serve(listener); err != nil {
			slog.Error("gRPC server error", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	slog.Info("Received signal, shutting down", "signal", sig)

	grpcServer.GracefulStop()
	slog.Info("RTP Manager stopped")
}

// loggingUnaryInterceptor logs incoming unary RPC calls with peer info.
func loggingUnaryInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	peerAddr := "unknown"
	if p, ok := peer.FromContext(ctx); ok {
		peerAddr = p.Addr.String()
	}
	slog.Debug("[gRPC] Incoming request", "method", info.FullMethod, "peer", peerAddr)
	return handler(ctx, req)
}

// loggingStreamInterceptor logs incoming streaming RPC calls with peer info.
func loggingStreamInterceptor(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	peerAddr := "unknown"
	if p, ok := peer.FromContext(ss.Context()); ok {
		peerAddr = p.Addr.String()
	}
	slog.Debug("[gRPC] Incoming stream", "method", info.FullMethod, "peer", peerAddr)
	return handler(srv, ss)
}
