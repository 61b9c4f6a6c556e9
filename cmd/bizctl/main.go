// cmd/bizctl/main.go
package main

import "github.com/javajoker/bizdir-backend/cmd/bizctl/commands"

func main() {
	commands.Execute()
}
