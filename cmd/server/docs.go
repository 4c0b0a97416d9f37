package main

//go:generate swag init -g cmd/server/main.go -o docs

// @title           LicitaRadar API
// @version         0.1.0
// @description     Daily procurement notice sync, enrichment, and alert delivery controls.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
