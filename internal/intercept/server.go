package intercept

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/elazarl/goproxy"

	"capestudio/internal/logging"
)

// Server adapts an Engine to the goproxy MITM runtime.
type Server struct {
	proxy  *goproxy.ProxyHttpServer
	engine *Engine
}

// NewServer builds a MITM proxy that runs engine on every decrypted exchange.
// A nil ca uses goproxy's built-in root.
func NewServer(engine *Engine, ca *tls.Certificate, logger *slog.Logger) *Server {
	proxy := goproxy.NewProxyHttpServer()
	proxy.Logger = printfLogger{logger: logging.NewComponentLogger(logger, "goproxy")}

	var connect goproxy.HttpsHandler = goproxy.AlwaysMitm
	if ca != nil {
		tlsConfig := goproxy.TLSConfigFromCA(ca)
		connect = goproxy.FuncHttpsHandler(func(host string, _ *goproxy.ProxyCtx) (*goproxy.ConnectAction, string) {
			return &goproxy.ConnectAction{Action: goproxy.ConnectMitm, TLSConfig: tlsConfig}, host
		})
	}
	proxy.OnRequest().HandleConnect(connect)

	proxy.OnRequest().DoFunc(func(req *http.Request, ctx *goproxy.ProxyCtx) (*http.Request, *http.Response) {
		x, resp := engine.HandleRequest(req)
		ctx.UserData = x
		return req, resp
	})
	proxy.OnResponse().DoFunc(func(resp *http.Response, ctx *goproxy.ProxyCtx) *http.Response {
		x, _ := ctx.UserData.(*Exchange)
		return engine.HandleResponse(x, resp)
	})

	return &Server{proxy: proxy, engine: engine}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.proxy.ServeHTTP(w, r)
}

// Engine returns the wrapped engine.
func (s *Server) Engine() *Engine {
	return s.engine
}

// LoadCA reads a PEM certificate and key pair for signing MITM leaf certificates.
func LoadCA(certPath, keyPath string) (*tls.Certificate, error) {
	ca, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, fmt.Errorf("load ca key pair: %w", err)
	}
	if ca.Leaf, err = x509.ParseCertificate(ca.Certificate[0]); err != nil {
		return nil, fmt.Errorf("parse ca certificate: %w", err)
	}
	if !ca.Leaf.IsCA {
		return nil, fmt.Errorf("%s is not a CA certificate", certPath)
	}
	return &ca, nil
}

// DefaultCACert returns the PEM of goproxy's built-in root, for installing
// into the client's trust store when no custom CA is configured.
func DefaultCACert() []byte {
	return goproxy.CA_CERT
}

type printfLogger struct {
	logger *slog.Logger
}

func (l printfLogger) Printf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}
