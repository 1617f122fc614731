package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kestrelworks/lobbyhub/internal/catalog"
)

var titleCaser = cases.Title(language.English)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User account management",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Registers a new account in the catalog",
	Run:   userAddCommand,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "Prints a notice; registered accounts are not listed",
	Run:   userListCommand,
}

func userAddCommand(cmd *cobra.Command, args []string) {
	cat, err := catalog.Open(openCatalogPath())
	if err != nil {
		fmt.Println("error opening catalog:", err)
		return
	}

	username, args := popArg(args, "Username")
	password, args := popArg(args, "Password")
	roleInput, _ := popArg(args, "Role (player/developer)")

	role := catalog.RolePlayer
	if strings.ToLower(roleInput) == string(catalog.RoleDeveloper) {
		role = catalog.RoleDeveloper
	}

	ok, err := cat.RegisterUser(username, password, role)
	if err != nil {
		fmt.Println("error registering user:", err)
		return
	}
	if !ok {
		fmt.Printf("user '%s' already exists; skipping\n", username)
		return
	}
	fmt.Printf("registered '%s' as %s\n", username, titleCaser.String(string(role)))
}

func userListCommand(cmd *cobra.Command, args []string) {
	fmt.Println("this command does not list user accounts; see 'admin game list' for developer ownership.")
}

func popArg(args []string, prompt string) (string, []string) {
	if len(args) == 1 {
		return args[0], nil
	} else if len(args) > 1 {
		return args[0], args[1:]
	}

	fmt.Printf("%s: ", prompt)
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Scan()
	return scanner.Text(), args
}
