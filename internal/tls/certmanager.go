package tls

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/caddyserver/certmagic"
)

// CertManager serves HTTPS with certificates obtained on demand from ACME,
// restricted to a fixed set of hostnames.
type CertManager struct {
	domains []string
	allowed map[string]struct{}
	logger  *slog.Logger
	cfg     *certmagic.Config
}

// NewCertManager creates a CertManager for domains. Outside production the
// Let's Encrypt staging CA is used.
func NewCertManager(domains []string, email string, production bool, logger *slog.Logger) *CertManager {
	certmagic.DefaultACME.Email = email
	certmagic.DefaultACME.Agreed = true
	if !production {
		certmagic.DefaultACME.CA = certmagic.LetsEncryptStagingCA
	}

	cfg := certmagic.NewDefault()
	cm := newCertManager(domains, logger)
	cm.cfg = cfg
	cfg.OnDemand = &certmagic.OnDemandConfig{
		DecisionFunc: cm.allowCert,
	}
	return cm
}

func newCertManager(domains []string, logger *slog.Logger) *CertManager {
	cm := &CertManager{
		domains: domains,
		allowed: make(map[string]struct{}, len(domains)),
		logger:  logger,
	}
	for _, d := range domains {
		cm.allowed[strings.ToLower(d)] = struct{}{}
	}
	return cm
}

// allowCert is the on-demand decision function: only configured names get
// a certificate.
func (cm *CertManager) allowCert(_ context.Context, name string) error {
	if _, ok := cm.allowed[strings.ToLower(name)]; !ok {
		return fmt.Errorf("unknown domain: %s", name)
	}
	return nil
}

// ListenAndServe serves handler over TLS on :443 until ctx is cancelled.
func (cm *CertManager) ListenAndServe(ctx context.Context, handler http.Handler) error {
	cm.logger.Info("starting TLS server", "domains", cm.domains)

	if err := cm.cfg.ManageSync(ctx, cm.domains); err != nil {
		return fmt.Errorf("manage domains: %w", err)
	}

	ln, err := tls.Listen("tcp", fmt.Sprintf(":%d", certmagic.HTTPSPort), cm.cfg.TLSConfig())
	if err != nil {
		return fmt.Errorf("tls listen: %w", err)
	}

	cm.logger.Info("serving HTTPS", "port", certmagic.HTTPSPort)
	return serve(ctx, ln, handler)
}

// serve runs an HTTP server on ln until ctx is cancelled or serving fails.
// The shutdown hook is released when serve returns, so restarts do not pile
// up waiters on ctx.
func serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	})
	defer stop()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
