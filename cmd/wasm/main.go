//go:build js && wasm

package main

import (
	"encoding/json"
	"strings"
	"syscall/js"

	"cmdref/config"
	"cmdref/internal/adapter/memstore"
	"cmdref/internal/adapter/snapshot"
	"cmdref/internal/domain"
	"cmdref/internal/logging"
	"cmdref/internal/usecase"
)

var (
	engine   *usecase.Engine
	importer *usecase.ImportUseCase
)

func init() {
	logger := logging.Discard()
	engine = usecase.NewEngine(config.DefaultConfig().Search, logger)
	importer = usecase.NewImportUseCase(memstore.NewMemoryStore(), nil, engine, true, logger)
}

func main() {
	c := make(chan struct{})

	js.Global().Set("cmdrefInitialize", js.FuncOf(initialize))
	js.Global().Set("cmdrefSearch", js.FuncOf(search))
	js.Global().Set("cmdrefSuggest", js.FuncOf(suggest))
	js.Global().Set("cmdrefRelated", js.FuncOf(related))
	js.Global().Set("cmdrefStats", js.FuncOf(stats))

	<-c
}

func initialize(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: cmdrefInitialize(snapshotJSON)")
	}

	data := args[0].String()
	snap, err := snapshot.Decode(strings.NewReader(data))
	if err != nil {
		return makeError(err.Error())
	}
	result, err := importer.ImportSnapshot(snap, snapshot.Fingerprint([]byte(data)), "js", false, nil, 1)
	if err != nil {
		return makeError(err.Error())
	}

	return makeResult(map[string]interface{}{
		"success":     true,
		"unchanged":   result.Unchanged,
		"commands":    result.Meta.Commands,
		"fingerprint": result.Meta.Fingerprint,
		"generation":  engine.Generation(),
	})
}

func search(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: cmdrefSearch(optionsJSON)")
	}

	var opts domain.SearchOptions
	if err := json.Unmarshal([]byte(args[0].String()), &opts); err != nil {
		return makeError("invalid options: " + err.Error())
	}
	if !opts.Complexity.Valid() {
		return makeError("invalid complexity: " + string(opts.Complexity))
	}

	return makeResult(map[string]interface{}{
		"results": engine.Search(opts),
		"query":   opts.Query,
	})
}

func suggest(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: cmdrefSuggest(prefix, [limit])")
	}

	limit := 0
	if len(args) > 1 {
		limit = args[1].Int()
	}

	return makeResult(map[string]interface{}{
		"suggestions": engine.GetSuggestions(args[0].String(), limit),
	})
}

func related(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: cmdrefRelated(id, [limit])")
	}

	limit := 0
	if len(args) > 1 {
		limit = args[1].Int()
	}

	return makeResult(map[string]interface{}{
		"related": engine.GetRelated(args[0].String(), limit),
	})
}

func stats(this js.Value, args []js.Value) interface{} {
	s, err := engine.Stats()
	if err != nil {
		return makeError(err.Error())
	}

	return makeResult(map[string]interface{}{
		"stats":      s,
		"categories": engine.Categories(),
	})
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data map[string]interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}
