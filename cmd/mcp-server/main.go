// cmd/mcp-server/main.go: standalone HTTP tool server for minigebra
//
// Exposes the minigebra tools as an HTTP endpoint for agent frameworks.
//
// Usage:
//
//	mcp-server [-p port] [-d library.db]
//
// Tool call endpoint: POST /tool
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
// Counters:           GET  /stats
package main

import (
	"bytes"
	"encoding/json"
	"expvar"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"strings"
	"syscall"
	"time"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/tevino/abool/v2"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/expvarhandler"

	"github.com/njchilds90/minigebra"
	"github.com/njchilds90/minigebra/internal/store"
)

const maxBodyBytes = 1 << 20 // 1 MiB

var (
	toolCalls    = expvar.NewInt("toolCalls")
	toolErrors   = expvar.NewInt("toolErrors")
	toolWarnings = expvar.NewInt("toolWarnings")
	badRequests  = expvar.NewInt("badRequests")
	panics       = expvar.NewInt("panics")
)

var shuttingDown = abool.New()

func writeJSON(ctx *fasthttp.RequestCtx, status int, v interface{}) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	_ = json.NewEncoder(ctx).Encode(v)
}

func handleTool(ctx *fasthttp.RequestCtx, reg *minigebra.Registry) {
	if !ctx.IsPost() {
		ctx.Error("method not allowed", fasthttp.StatusMethodNotAllowed)
		return
	}

	dec := json.NewDecoder(bytes.NewReader(ctx.PostBody()))
	dec.DisallowUnknownFields()

	var req minigebra.ToolRequest
	if err := dec.Decode(&req); err != nil {
		badRequests.Add(1)
		writeJSON(ctx, fasthttp.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	// Ensure there's no trailing junk.
	if dec.More() {
		badRequests.Add(1)
		writeJSON(ctx, fasthttp.StatusBadRequest, map[string]string{"error": "invalid JSON: trailing data"})
		return
	}

	toolCalls.Add(1)
	resp := minigebra.HandleToolCallWith(req, reg)
	if resp.Error != "" {
		toolErrors.Add(1)
	}
	if resp.Warning != "" {
		toolWarnings.Add(1)
	}
	writeJSON(ctx, fasthttp.StatusOK, resp)
}

func loadRegistry(path string) (*minigebra.Registry, error) {
	if path == "" {
		return minigebra.NewRegistry(), nil
	}
	lib, err := store.NewSQLite(path)
	if err != nil {
		return nil, err
	}
	defer lib.Close()
	sess := minigebra.NewSession(lib)
	if err := sess.LoadLibrary(); err != nil {
		return nil, err
	}
	return sess.Registry, nil
}

func main() {
	opts, _, err := getopt.Getopts(os.Args, "p:d:h")
	if err != nil {
		log.Fatalln(err)
	}
	port := 8080
	dbPath := ""
	for _, opt := range opts {
		switch opt.Option {
		case 'p':
			port, err = strconv.Atoi(opt.Value)
			if err != nil || port <= 0 {
				log.Fatalln("invalid -p parameter")
			}
		case 'd':
			dbPath = opt.Value
		case 'h':
			fmt.Fprintln(os.Stderr, "usage: mcp-server [-p port] [-d library.db]")
			return
		}
	}

	reg, err := loadRegistry(dbPath)
	if err != nil {
		log.Fatalf("load library %s: %v", dbPath, err)
	}

	requestHandler := func(ctx *fasthttp.RequestCtx) {
		defer func() {
			if rec := recover(); rec != nil {
				panics.Add(1)
				log.Printf("panic in %s: %v\n%s", ctx.Path(), rec, string(debug.Stack()))
				ctx.Error("internal server error", fasthttp.StatusInternalServerError)
			}
		}()

		switch string(ctx.Path()) {
		case "/tool":
			handleTool(ctx, reg)
		case "/schema":
			ctx.SetContentType("application/json")
			ctx.SetBodyString(minigebra.MCPToolSpec())
		case "/health":
			status, code := "ok", fasthttp.StatusOK
			if shuttingDown.IsSet() {
				status, code = "shutting down", fasthttp.StatusServiceUnavailable
			}
			writeJSON(ctx, code, map[string]interface{}{
				"status": status,
				"time":   time.Now().UTC().Format(time.RFC3339),
			})
		case "/stats":
			expvarhandler.ExpvarHandler(ctx)
		default:
			ctx.Error("not found", fasthttp.StatusNotFound)
		}
	}

	addr := fmt.Sprintf(":%d", port)
	log.Printf("minigebra MCP server listening on %s", addr)
	log.Printf("  POST /tool   - execute a tool call (%s)", strings.Join(minigebra.ToolNames(), ", "))
	log.Printf("  GET  /schema - tool schema for agent registration")
	log.Printf("  GET  /health - health check")
	log.Printf("  GET  /stats  - request counters")

	server := &fasthttp.Server{
		Handler:            requestHandler,
		ReadTimeout:        15 * time.Second,
		WriteTimeout:       15 * time.Second,
		IdleTimeout:        60 * time.Second,
		MaxRequestBodySize: maxBodyBytes,
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigc
		shuttingDown.Set()
		log.Printf("received %s, shutting down", sig)
		if err := server.Shutdown(); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	if err := server.ListenAndServe(addr); err != nil {
		log.Fatalf("error in ListenAndServe: %v", err)
	}
}
