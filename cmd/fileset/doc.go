// Package main hosts the fileset CLI entrypoint and command graph.
//
// The Cobra command tree loads catalogs (add), reconciles trees against them
// (search, verify, hunt), and reports catalog state (list). It centralizes
// configuration resolution, logger construction, and catalog session setup
// so subcommands only parse flags and render workflow results from
// internal/api.
package main
