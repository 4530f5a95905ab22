package main

import (
	"log"
	_ "time/tzdata"

	"cryptiq/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatalf("could not start application: %v", err)
	}
}
