package providers

import (
	"context"

	"github.com/rs/zerolog"

	"lrsd/pkg/types"
)

// LogProvider records statements in the process log. It never fails.
type LogProvider struct {
	id  string
	log zerolog.Logger
}

func NewLogProvider(id string, log zerolog.Logger) *LogProvider {
	return &LogProvider{id: id, log: log.With().Str("provider", id).Logger()}
}

func (p *LogProvider) ID() string { return p.id }

func (p *LogProvider) Accept(_ context.Context, stmt types.Statement) error {
	ev := p.log.Info().
		Str("statement_id", stmt.ID).
		Str("actor", stmt.Actor.ID).
		Str("verb", stmt.Verb.ID).
		Str("object", stmt.Object.ID).
		Time("timestamp", stmt.Timestamp)
	if stmt.Result != nil {
		ev = ev.Interface("result", stmt.Result)
	}
	ev.Msg("statement recorded")
	return nil
}
