// Package logger provides adapters for popular logger libraries to work
// with bptree's Logger interface.
//
// The adapters let you plug in a logger you're already using without
// writing boilerplate. Note that the standard library's slog.Logger
// already implements bptree.Logger directly.
//
// Example with zap:
//
//	import (
//	    "bptree"
//	    "bptree/logger"
//	    "go.uber.org/zap"
//	)
//
//	func main() {
//	    zapLogger, _ := zap.NewProduction()
//
//	    idx, err := bptree.New[string, int](cmp, 64, bptree.WithLogger[string, int](logger.NewZap(zapLogger)))
//	    if err != nil {
//	        panic(err)
//	    }
//	}
package logger
