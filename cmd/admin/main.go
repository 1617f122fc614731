// The admin command is a small convenience tool for inspecting and
// manipulating the lobbyhub catalog file without a running server.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configFlag string

func main() {
	rootCmd := &cobra.Command{
		Use:   "admin",
		Short: "lobbyhub catalog and operations tools",
	}
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "./", "Path to the server config directory")

	userCmd.AddCommand(userAddCmd, userListCmd)
	gameCmd.AddCommand(gameListCmd, gameRemoveCmd)
	roomCmd.AddCommand(roomListCmd)

	rootCmd.AddCommand(userCmd, gameCmd, roomCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
	}
}

// openCatalogPath returns the catalog file path named by the resolved
// config, mirroring the server's own startup path so the admin tool sees
// exactly what a running server would. If the config cannot be loaded it
// falls back to "database.json".
func openCatalogPath() string {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Println("error loading configuration:", err)
		return "database.json"
	}
	return cfg.Catalog.Path
}
