package main

import "flms/internal/app/server"

func main() {
	server.Run()
}
