package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kestrelworks/lobbyhub/internal/catalog"
)

var gameCmd = &cobra.Command{
	Use:   "game",
	Short: "Catalog game management",
}

var gameListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists every game in the catalog",
	Run:   gameListCommand,
}

var gameRemoveCmd = &cobra.Command{
	Use:   "rm",
	Short: "Force-removes a game and its artifact, bypassing ownership and active-room checks",
	Run:   gameRemoveCommand,
}

func gameListCommand(cmd *cobra.Command, args []string) {
	cat, err := catalog.Open(openCatalogPath())
	if err != nil {
		fmt.Println("error opening catalog:", err)
		return
	}

	games := cat.GetGames()
	if len(games) == 0 {
		fmt.Println("no games in catalog")
		return
	}
	for _, g := range games {
		fmt.Printf("%-20s dev=%-12s v%-8s type=%-4s rating=%.1f downloads=%d comments=%d\n",
			g.Name, g.Dev, g.Version, g.GameType, g.AvgRating, g.Downloads, g.CommentCount)
	}
}

func gameRemoveCommand(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Println("error loading configuration:", err)
		return
	}

	cat, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		fmt.Println("error opening catalog:", err)
		return
	}

	name, _ := popArg(args, "Game name")
	dev := cat.GetGameOwner(name)
	if dev == "" {
		fmt.Printf("game '%s' not found\n", name)
		return
	}

	filename, err := cat.DeleteGame(dev, name)
	if err != nil {
		fmt.Println("error deleting game:", err)
		return
	}
	if filename == "" {
		fmt.Printf("game '%s' not found\n", name)
		return
	}

	path := filepath.Join(cfg.Catalog.ArtifactDir, filename)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		fmt.Println("warning: could not remove artifact:", err)
	}
	fmt.Printf("removed '%s'\n", name)
}
