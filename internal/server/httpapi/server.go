package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/workshopreg/internal/logging"
	"github.com/dmitrijs2005/workshopreg/internal/server/models"
	"github.com/dmitrijs2005/workshopreg/internal/server/services"
	"github.com/gin-gonic/gin"
)

type Registrar interface {
	Register(ctx context.Context, req *services.RegistrationRequest) (*models.User, error)
}

type Acceptor interface {
	SetAccepted(ctx context.Context, id string, value any) (bool, error)
	ResetAll(ctx context.Context) (int64, error)
	ListByAccepted(ctx context.Context, accepted bool) ([]*models.User, error)
	ListAll(ctx context.Context) ([]*models.User, error)
}

type WorkshopLister interface {
	List(ctx context.Context) ([]models.WorkshopView, error)
}

type Options struct {
	Address         string
	Backend         string
	ListUsersRoute  string
	ShutdownTimeout time.Duration
}

type HTTPServer struct {
	opts         Options
	registration Registrar
	acceptance   Acceptor
	workshops    WorkshopLister
	logger       logging.Logger
	router       *gin.Engine
}

func NewHTTPServer(opts Options, l logging.Logger, reg Registrar, acc Acceptor, ws WorkshopLister) *HTTPServer {
	s := &HTTPServer{
		opts:         opts,
		registration: reg,
		acceptance:   acc,
		workshops:    ws,
		logger:       l.With("module", "http_server"),
	}
	s.router = s.routes()
	return s
}

// Handler exposes the router, mostly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

func (s *HTTPServer) routes() *gin.Engine {
	r := gin.New()
	r.Use(requestID(), s.accessLog(), gin.CustomRecovery(s.recovered), cors())

	r.GET("/", s.root)
	r.POST("/register", s.register)
	r.GET(s.opts.ListUsersRoute, s.listUsers)
	r.POST("/addANDreset", s.resetAccepted)
	r.GET("/listaccepted", s.listAccepted)
	r.GET("/listrejected", s.listRejected)
	r.PATCH("/users/:id/status", s.setStatus)
	r.GET("/workshops", s.listWorkshops)

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most ShutdownTimeout.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *HTTPServer) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String(), "backend", s.opts.Backend)

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-stopped
}
