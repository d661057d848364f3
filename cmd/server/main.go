package main

import "ghpayroll/internal/app/server"

func main() {
	server.Run()
}
