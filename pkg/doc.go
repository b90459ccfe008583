// Package pkg provides the core libraries for Ziggurat pyramid generation.
//
// # Overview
//
// Ziggurat turns a small parameter set into a stylized isometric
// stepped-pyramid image. The pkg directory is organized into:
//
//  1. [pyramid] - Domain logic (parameters, projection, shading, rasterization)
//  2. [pipeline] - Orchestration (validate → render → derive, with caching)
//  3. [cache], [history] - Infrastructure (artifact cache, render history)
//  4. [errors], [buildinfo], [observability] - Cross-cutting support
//
// # Architecture
//
// The typical data flow through Ziggurat:
//
//	Parameters (levels, base size, color, pattern, base type)
//	         ↓
//	    [pyramid] package (isometric projection + tile shading)
//	         ↓
//	    [pipeline] package (caching, thumbnails)
//	         ↓
//	    PNG artifacts → [history] store / CLI output / HTTP API
//
// # Quick Start
//
//	params := pyramid.Parameters{Levels: 5, BaseSize: 9, TileColor: "#3b82f6"}
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(ctx, pipeline.Options{Params: params})
package pkg
