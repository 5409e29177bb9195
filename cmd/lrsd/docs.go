package main

// General API documentation for swaggo. Run `swag init -g cmd/lrsd/docs.go` to regenerate docs/.
//
// @title           lrsd API
// @version         1.0
// @description     HTTP intake for the learning-record statement dispatcher.
//
// @contact.name   lrsd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
