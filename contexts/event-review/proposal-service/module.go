package proposalservice

import (
	"log/slog"

	httpadapter "papercall/contexts/event-review/proposal-service/adapters/http"
	"papercall/contexts/event-review/proposal-service/adapters/memory"
	"papercall/contexts/event-review/proposal-service/application/commands"
	"papercall/contexts/event-review/proposal-service/application/queries"
	"papercall/contexts/event-review/proposal-service/domain/entities"
	"papercall/contexts/event-review/proposal-service/ports"
)

type Module struct {
	Handler httpadapter.Handler

	Store    *memory.Store
	Access   *memory.AccessChecker
	Settings *memory.Settings
	Notifier *memory.Notifier
}

type Dependencies struct {
	Repository ports.Repository
	Access     ports.AccessChecker
	Settings   ports.EventSettings
	Notifier   ports.Notifier
	Clock      ports.Clock

	DisplaySpeakers bool
	DisplayReviews  bool

	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	searchUseCase := queries.SearchUseCase{
		Repository:      deps.Repository,
		Access:          deps.Access,
		DisplaySpeakers: deps.DisplaySpeakers,
		DisplayReviews:  deps.DisplayReviews,
		Logger:          deps.Logger,
	}
	statusUseCase := commands.StatusUseCase{
		Repository: deps.Repository,
		Access:     deps.Access,
		Search:     searchUseCase,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
	}
	publishUseCase := commands.PublishUseCase{
		Repository: deps.Repository,
		Access:     deps.Access,
		Settings:   deps.Settings,
		Notifier:   deps.Notifier,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
	}
	rateUseCase := commands.RateProposalUseCase{
		Repository: deps.Repository,
		Access:     deps.Access,
		Settings:   deps.Settings,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Search:       searchUseCase,
			Status:       statusUseCase,
			Publish:      publishUseCase,
			RateProposal: rateUseCase,
			Logger:       deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Proposal, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	access := memory.NewAccessChecker()
	settings := memory.NewSettings()
	notifier := memory.NewNotifier()
	module := NewModule(Dependencies{
		Repository:      store,
		Access:          access,
		Settings:        settings,
		Notifier:        notifier,
		Clock:           store,
		DisplaySpeakers: true,
		DisplayReviews:  true,
		Logger:          logger,
	})
	module.Store = store
	module.Access = access
	module.Settings = settings
	module.Notifier = notifier
	return module
}
