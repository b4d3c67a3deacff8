// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Wiring of the client components shared by every command.
package cli

import (
	"log/slog"

	"github.com/jeranaias/rigrun-chat/internal/api"
	"github.com/jeranaias/rigrun-chat/internal/assembler"
	"github.com/jeranaias/rigrun-chat/internal/client"
	"github.com/jeranaias/rigrun-chat/internal/compare"
	"github.com/jeranaias/rigrun-chat/internal/config"
	"github.com/jeranaias/rigrun-chat/internal/conn"
	"github.com/jeranaias/rigrun-chat/internal/logging"
	"github.com/jeranaias/rigrun-chat/internal/session"
	"github.com/jeranaias/rigrun-chat/internal/store"
)

// App holds one wired client. Nothing touches the network until Conn is
// connected or API is called.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Location *session.URLLocation

	Store      *store.Store
	Assembler  *assembler.Assembler
	Sessions   *session.Controller
	Dispatcher *client.Dispatcher
	Compare    *compare.Orchestrator
	API        *api.Client
	Conn       *conn.Manager
}

// NewApp wires the components. location is the addressable location to
// start from; empty means a fresh one rooted at the API URL.
func NewApp(cfg *config.Config, location string, logger *slog.Logger) (*App, error) {
	logger = logging.OrDiscard(logger)

	loc := session.NewLocation(cfg.Server.APIURL)
	if location != "" {
		parsed, err := session.ParseLocation(location)
		if err != nil {
			return nil, NewValidationError("location", location, err.Error())
		}
		loc = parsed
	}

	st := store.New(store.WithLocation(loc))
	httpClient := api.NewFromConfig(cfg, logger.With("component", "api"))
	manager := conn.New(conn.ConfigFrom(cfg), conn.NewWebsocketDialer(nil), logger.With("component", "conn"))
	asm := assembler.New(st, logger.With("component", "assembler"))
	ctrl := session.NewController(st, httpClient, asm, logger.With("component", "session"))

	return &App{
		Config:     cfg,
		Logger:     logger,
		Location:   loc,
		Store:      st,
		Assembler:  asm,
		Sessions:   ctrl,
		Dispatcher: client.New(st, asm, ctrl, manager, logger.With("component", "client")),
		Compare:    compare.New(st, httpClient, logger.With("component", "compare")),
		API:        httpClient,
		Conn:       manager,
	}, nil
}

// Region returns the comparison region: the flag value, else the config
// default.
func (a *App) Region(flag string) string {
	if flag != "" {
		return flag
	}
	return a.Config.Compare.DefaultRegion
}

// Close stops the connection and abandons a pending comparison.
func (a *App) Close() error {
	a.Compare.Cancel()
	return a.Conn.Close()
}
