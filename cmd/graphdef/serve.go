package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/graphql-go/graphql"
	"github.com/nats-io/nats.go"

	"github.com/syssam/graphdef"
	"github.com/syssam/graphdef/subscription/natsengine"
)

func serveCmd(ctx context.Context, e *env, args []string) error {
	fs := e.flags("serve")
	addr := fs.String("addr", ":8080", "listen address")
	subgraph := fs.Bool("subgraph", false, "serve the federation subgraph schema")
	natsURL := fs.String("nats", "", "NATS server publishing subscription events")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var extra []graphdef.Option
	if *natsURL != "" {
		engine, nc, err := natsengine.Connect(*natsURL, []nats.Option{nats.Name("graphdef")}, natsengine.WithLogger(e.logger))
		if err != nil {
			return err
		}
		defer nc.Close()
		extra = append(extra, graphdef.WithSubscriptions(engine))
	}
	g, err := e.open(extra...)
	if err != nil {
		return err
	}
	exe, err := schema(ctx, g, *subgraph)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("GET /", playground.Handler("graphdef", "/query"))
	mux.Handle("POST /query", queryHandler(exe))
	srv := &http.Server{Addr: *addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	e.logger.Info("serving", "addr", *addr, "subgraph", *subgraph)
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

// queryHandler executes GraphQL requests posted as JSON.
func queryHandler(exe *graphdef.Executable) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "malformed request: "+err.Error(), http.StatusBadRequest)
			return
		}
		res := graphql.Do(graphql.Params{
			Schema:         exe.Schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        r.Context(),
		})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	})
}
