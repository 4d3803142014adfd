// Package main provides the entry point for marcopolo.
// marcopolo is a cycle-accurate simulator of a UART command responder.
//
// For the full CLI, use: go run ./cmd/marcopolo
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("marcopolo - MARCO/POLO UART responder simulator")
	fmt.Println("Cycle-accurate model at 50 MHz, 9600 baud")
	fmt.Println("")
	fmt.Println("Usage: marcopolo <command> [options]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  run [scenario...]   Run verification scenarios")
	fmt.Println("  list                List scenarios")
	fmt.Println("  config [path]       Print or save the default harness config")
	fmt.Println("  emulate             Feed stdin through the functional model")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/marcopolo' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/marcopolo' instead.")
	}
}
