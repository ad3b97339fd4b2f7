// Package main provides the entry point of the StoryBB permission service.
// It stores forum-wide and board permissions per membergroup in a gorm database,
// evaluates them with deny-wins semantics and serves a Fiber admin api to change them.
// The cobra commands also check, propagate, export and import permissions from the shell.
package main
