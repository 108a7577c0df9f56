package main

// General API documentation for swaggo. Run `swag init -g cmd/llmlauncher/docs.go` to generate docs.
//
// @title           llmlauncher API
// @version         1.0
// @description     HTTP API for dispatching one prompt pair to many LLM endpoints and comparing the answers.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
