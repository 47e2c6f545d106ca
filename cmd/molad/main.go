// Command molad prints Hebrew calendar, molad and Shabbos Mevorchim facts.
package main

import (
	"os"

	"github.com/zapponejosh/molad-api/cmd/molad/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
