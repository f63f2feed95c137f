// Package admin implements the CLI commands for the provider's admin
// surface: opening, closing, and destroying databases, listing what's
// open, and reading back a database's stored configuration.
package admin

import (
	"encoding/json"
	"fmt"

	"github.com/kvprovider/kvprovider/cmd/util"
	"github.com/kvprovider/kvprovider/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcClient *client.Client

	// AdminCommands represents the admin command group
	AdminCommands = &cobra.Command{
		Use:               "admin",
		Short:             "Perform provider admin operations",
		PersistentPreRunE: setupAdminClient,
	}

	openCmd = &cobra.Command{
		Use:   "open [backendType] [name] [config]",
		Short: "Opens a new database of backendType, named name, from a JSON config",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			backendType, name := args[0], args[1]
			var rawConfig json.RawMessage
			if len(args) == 3 {
				rawConfig = json.RawMessage(args[2])
			}
			opened, err := rpcClient.OpenDatabase(backendType, name, rawConfig)
			if err != nil {
				return err
			}
			fmt.Printf("opened database %q\n", opened)
			return nil
		},
	}

	findCmd = &cobra.Command{
		Use:   "find [name]",
		Short: "Resolves a database name to its UUID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := rpcClient.FindByName(args[0])
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		},
	}

	closeCmd = &cobra.Command{
		Use:   "close",
		Short: "Closes the configured database without destroying its storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcClient.CloseDatabase(); err != nil {
				return err
			}
			fmt.Println("closed successfully")
			return nil
		},
	}

	destroyCmd = &cobra.Command{
		Use:   "destroy",
		Short: "Closes the configured database and erases its storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcClient.DestroyDatabase(); err != nil {
				return err
			}
			fmt.Println("destroyed successfully")
			return nil
		},
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Lists every database the provider has open",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := rpcClient.ListDatabases()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Prints the configured database's stored configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rpcClient.GetConfig()
			if err != nil {
				return err
			}
			fmt.Println(string(cfg))
			return nil
		},
	}
)

func init() {
	cobra.OnInitialize(util.InitClientConfig)
	util.SetupRPCClientFlags(AdminCommands)

	AdminCommands.AddCommand(openCmd)
	AdminCommands.AddCommand(findCmd)
	AdminCommands.AddCommand(closeCmd)
	AdminCommands.AddCommand(destroyCmd)
	AdminCommands.AddCommand(listCmd)
	AdminCommands.AddCommand(configCmd)
}

func setupAdminClient(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	config := util.GetClientConfig()
	token := util.GetToken()
	database := util.GetDatabase()

	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	if err := t.Connect(*config); err != nil {
		return err
	}

	rpcClient = client.New(database, t, s).WithToken(token)
	return nil
}
