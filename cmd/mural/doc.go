// Package main hosts the mural CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into IPC calls
// against murald, one-shot rotation runs, candidate previews, journal queries,
// and configuration scaffolding. It centralizes configuration resolution and
// socket discovery so subcommands can focus on user experience.
package main
