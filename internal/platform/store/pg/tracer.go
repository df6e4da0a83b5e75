package pg

import (
	"context"
	"time"

	"brickdump/internal/platform/logger"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Tracer logs queries and COPY statements through zerolog
// it implements pgx.QueryTracer and pgx.CopyFromTracer
type Tracer struct {
	log  logger.Logger
	slow time.Duration
	now  func() time.Time
}

type traceKey struct{}

type traceStart struct {
	at   time.Time
	sql  string
	args int
}

var (
	_ pgx.QueryTracer    = (*Tracer)(nil)
	_ pgx.CopyFromTracer = (*Tracer)(nil)
)

// NewTracer returns a tracer that ALWAYS prints statements, independent of the root level
// queries at or above slow are logged at warn, 0 disables slow marking
func NewTracer(root logger.Logger, slow time.Duration) *Tracer {
	ll := root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()
	return &Tracer{log: ll, slow: slow, now: time.Now}
}

// TraceQueryStart stashes the statement and start time on the context
func (t *Tracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, traceKey{}, traceStart{at: t.now(), sql: data.SQL, args: len(data.Args)})
}

// TraceQueryEnd logs the finished statement
func (t *Tracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	st, _ := ctx.Value(traceKey{}).(traceStart)
	t.emit(st, "pg query", data.CommandTag.RowsAffected(), data.Err)
}

// TraceCopyFromStart stashes the target table on the context
func (t *Tracer) TraceCopyFromStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceCopyFromStartData) context.Context {
	return context.WithValue(ctx, traceKey{}, traceStart{at: t.now(), sql: "COPY " + data.TableName.Sanitize(), args: len(data.ColumnNames)})
}

// TraceCopyFromEnd logs the finished COPY
func (t *Tracer) TraceCopyFromEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceCopyFromEndData) {
	st, _ := ctx.Value(traceKey{}).(traceStart)
	t.emit(st, "pg copy", data.CommandTag.RowsAffected(), data.Err)
}

func (t *Tracer) emit(st traceStart, msg string, rows int64, err error) {
	elapsed := time.Duration(0)
	if !st.at.IsZero() {
		elapsed = t.now().Sub(st.at)
	}
	slow := t.slow > 0 && elapsed >= t.slow

	evt := t.log.Info()
	switch {
	case err != nil:
		evt = t.log.Error()
	case slow:
		evt = t.log.Warn()
	}
	evt.Float64("elapsed_ms", float64(elapsed.Microseconds())/1000.0).
		Bool("slow", slow).
		Str("sql", compact(st.sql)).
		Int("args", st.args).
		Int64("rows", rows).
		Err(err).
		Msg(msg)
}

func compact(s string) string {
	out := make([]rune, 0, len(s))
	space := false
	for _, r := range s {
		if r == '\n' || r == '\t' || r == '\r' || r == ' ' {
			if !space {
				out = append(out, ' ')
				space = true
			}
			continue
		}
		space = false
		out = append(out, r)
	}
	return string(out)
}
