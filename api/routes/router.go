package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/disputedesk/disputedesk-backend/api/controllers"
	"github.com/disputedesk/disputedesk-backend/api/middleware"
	"github.com/disputedesk/disputedesk-backend/api/responses"
	"github.com/disputedesk/disputedesk-backend/internal/disputes"
	"github.com/disputedesk/disputedesk-backend/internal/evidence"
	"github.com/disputedesk/disputedesk-backend/internal/explanations"
	"github.com/disputedesk/disputedesk-backend/internal/packets"
	"github.com/disputedesk/disputedesk-backend/pkg/config"
	"github.com/disputedesk/disputedesk-backend/pkg/db"
	pkgerrors "github.com/disputedesk/disputedesk-backend/pkg/errors"
	"github.com/disputedesk/disputedesk-backend/pkg/logger"
	"github.com/disputedesk/disputedesk-backend/pkg/metrics"
	pkgredis "github.com/disputedesk/disputedesk-backend/pkg/redis"
	"github.com/disputedesk/disputedesk-backend/pkg/storage/local"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	storageClient *local.Client,
	redisClient *pkgredis.Client,
	httpMetrics *metrics.HTTPMetrics,
	disputesService disputes.Service,
	evidenceService evidence.Service,
	explanationsService explanations.Service,
	packetsService packets.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(),
	)

	identity := middleware.Identity(middleware.ResolverFor(cfg.JWT), logg)

	var idemStore pkgredis.IdempotencyStore
	if redisClient != nil {
		idemStore = redisClient
	}

	r.Get("/health/live", controllers.HealthLive(cfg))
	r.Get("/health/ready", controllers.HealthReady(cfg, dbP, storageClient, logg))
	r.Method(http.MethodGet, "/metrics", httpMetrics.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Group(func(authed chi.Router) {
			authed.Use(identity)
			authed.Get("/auth/user", controllers.AuthUser(logg))
		})

		api.Route("/v1", func(v1 chi.Router) {
			v1.Use(identity)
			v1.Use(middleware.Idempotency(idemStore, logg))

			v1.Route("/disputes", func(dr chi.Router) {
				dr.Get("/", controllers.ListDisputes(disputesService, logg))
				dr.Get("/{id}", controllers.GetDispute(disputesService, logg))
				dr.Get("/{id}/template", controllers.GetDisputeTemplate(disputesService, logg))
				dr.Get("/{id}/explanation", controllers.GetExplanation(explanationsService, logg))
				dr.Put("/{id}/explanation", controllers.PutExplanation(explanationsService, logg))
			})

			v1.Route("/evidence", func(er chi.Router) {
				er.Get("/{disputeId}", controllers.ListEvidence(evidenceService, logg))
				er.Post("/{disputeId}/upload", controllers.UploadEvidence(evidenceService, cfg.Evidence.MaxUploadBytes(), logg))
				er.Delete("/{id}", controllers.DeleteEvidence(evidenceService, logg))
			})

			v1.Route("/packets", func(pr chi.Router) {
				pr.Post("/{disputeId}", controllers.GeneratePacket(packetsService, logg))
				pr.Get("/latest/{disputeId}", controllers.GetLatestPacket(packetsService, logg))
				pr.Get("/download/{packetId}", controllers.DownloadPacket(packetsService, logg))
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	})

	return r
}
