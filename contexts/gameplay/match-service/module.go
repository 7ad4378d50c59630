package matchservice

import (
	"log/slog"
	"time"

	httpadapter "hivemind/contexts/gameplay/match-service/adapters/http"
	"hivemind/contexts/gameplay/match-service/adapters/memory"
	"hivemind/contexts/gameplay/match-service/application/commands"
	"hivemind/contexts/gameplay/match-service/application/queries"
	"hivemind/contexts/gameplay/match-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Turns   commands.TurnUseCase
	Store   *memory.Store
}

type Dependencies struct {
	Games            ports.GameRepository
	Ballots          ports.BallotRepository
	Clock            ports.Clock
	IDGen            ports.IDGenerator
	VotingWindow     time.Duration
	AutoMoveFallback bool
	Logger           *slog.Logger
}

func NewModule(deps Dependencies) Module {
	gameUseCase := commands.GameUseCase{
		Games:  deps.Games,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	ballotUseCase := commands.BallotUseCase{
		Games:        deps.Games,
		Ballots:      deps.Ballots,
		Clock:        deps.Clock,
		IDGen:        deps.IDGen,
		VotingWindow: deps.VotingWindow,
		Logger:       deps.Logger,
	}
	turnUseCase := commands.TurnUseCase{
		Games:            deps.Games,
		Ballots:          deps.Ballots,
		Clock:            deps.Clock,
		IDGen:            deps.IDGen,
		AutoMoveFallback: deps.AutoMoveFallback,
		Lifecycle:        gameUseCase,
		Logger:           deps.Logger,
	}
	gameQueries := queries.GameQueries{
		Games:   deps.Games,
		Ballots: deps.Ballots,
	}
	return Module{
		Handler: httpadapter.Handler{
			Games:   gameUseCase,
			Ballots: ballotUseCase,
			Turns:   turnUseCase,
			Queries: gameQueries,
			Logger:  deps.Logger,
		},
		Turns: turnUseCase,
	}
}

// NewInMemoryModule wires the module against the memory store; used by tests
// and local tooling.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Games:            store,
		Ballots:          store,
		Clock:            store,
		IDGen:            store,
		VotingWindow:     5 * time.Minute,
		AutoMoveFallback: true,
		Logger:           logger,
	})
	module.Store = store
	return module
}
