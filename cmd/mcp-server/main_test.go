package main

import (
	"encoding/json"
	"testing"

	"github.com/valyala/fasthttp"

	"github.com/njchilds90/minigebra"
)

func post(body string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodPost)
	ctx.Request.SetBodyString(body)
	return ctx
}

func TestHandleTool(t *testing.T) {
	reg := minigebra.NewRegistry()
	def, err := minigebra.ParseDefinition("sq(t) = t^2")
	if err != nil {
		t.Fatal(err)
	}
	if err := reg.Define(def); err != nil {
		t.Fatal(err)
	}

	ctx := post(`{"tool":"diff","params":{"expr":"sq(x)","var":"x"}}`)
	handleTool(ctx, reg)
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("want 200, got %d", ctx.Response.StatusCode())
	}
	var resp minigebra.ToolResponse
	if err := json.Unmarshal(ctx.Response.Body(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.String != "2 x" {
		t.Errorf("want 2 x, got %s (%s)", resp.String, resp.Error)
	}
}

func TestHandleTool_BadRequests(t *testing.T) {
	for _, body := range []string{
		`{"tool":"diff","bogus":1}`,
		`{"tool":"diff"} {}`,
		`not json`,
	} {
		ctx := post(body)
		handleTool(ctx, nil)
		if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
			t.Errorf("%s: want 400, got %d", body, ctx.Response.StatusCode())
		}
	}

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	handleTool(ctx, nil)
	if ctx.Response.StatusCode() != fasthttp.StatusMethodNotAllowed {
		t.Errorf("want 405, got %d", ctx.Response.StatusCode())
	}
}

func TestHandleTool_ToolError(t *testing.T) {
	ctx := post(`{"tool":"nope"}`)
	handleTool(ctx, nil)
	var resp minigebra.ToolResponse
	if err := json.Unmarshal(ctx.Response.Body(), &resp); err != nil {
		t.Fatal(err)
	}
	if ctx.Response.StatusCode() != fasthttp.StatusOK || resp.Error == "" {
		t.Errorf("want 200 with an error field, got %d %+v", ctx.Response.StatusCode(), resp)
	}
}

func TestLoadRegistry_Empty(t *testing.T) {
	reg, err := loadRegistry("")
	if err != nil {
		t.Fatal(err)
	}
	if len(reg.Definitions()) != 0 {
		t.Errorf("want no user functions, got %v", reg.Definitions())
	}
}
