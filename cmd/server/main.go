package main

import "leavehq/internal/app/server"

func main() {
	server.Run()
}
