// kaffid -- on-device coffee machine authorization daemon.
package main

import "github.com/worxli/kaffi/cmd/kaffid/commands"

func main() {
	commands.Execute()
}
