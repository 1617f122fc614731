package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var roomCmd = &cobra.Command{
	Use:   "room",
	Short: "Room inspection",
}

var roomListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists active rooms",
	Run:   roomListCommand,
}

// The room registry lives entirely in a running server's memory -- unlike
// the catalog, there is no file this tool can read it from. Listing rooms
// offline would mean faking data, which is worse than admitting the
// limitation.
func roomListCommand(cmd *cobra.Command, args []string) {
	fmt.Println("room state is in-memory only; this command requires querying a live server, which is not yet implemented.")
}
