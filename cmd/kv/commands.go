package kv

import (
	"fmt"

	"github.com/kvprovider/kvprovider/lib/mode"
	"github.com/spf13/cobra"
)

var (
	putCmd = &cobra.Command{
		Use:   "put [key] [value]",
		Short: "Stores the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if err := rpcClient.Put(0, [][]byte{[]byte(key)}, [][]byte{[]byte(value)}); err != nil {
				return err
			}
			fmt.Println("put successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			values, sizes, err := rpcClient.Get(0, [][]byte{[]byte(key)})
			if err != nil {
				return err
			}
			if mode.IsSentinel(sizes[0]) {
				fmt.Printf("key=%s, found=false\n", key)
				return nil
			}
			fmt.Printf("key=%s, found=true, value=%s\n", key, values[0])
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Erases a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if err := rpcClient.Erase(0, [][]byte{[]byte(key)}); err != nil {
				return err
			}
			fmt.Println("erase successfully")
			return nil
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [key]",
		Short: "Checks if a key exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			flags, err := rpcClient.Exists(0, [][]byte{[]byte(key)})
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=%t\n", key, flags[0])
			return nil
		},
	}
	countCmd = &cobra.Command{
		Use:   "count",
		Short: "Reports the number of entries stored in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := rpcClient.Count(0)
			if err != nil {
				return err
			}
			fmt.Printf("count=%d\n", n)
			return nil
		},
	}
	listCmd = &cobra.Command{
		Use:   "list [fromKey] [prefix]",
		Short: "Lists keys starting from fromKey filtered by prefix",
		Args:  cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fromKey, prefix []byte
			if len(args) > 0 {
				fromKey = []byte(args[0])
			}
			if len(args) > 1 {
				prefix = []byte(args[1])
			}
			maxRecords, err := cmd.Flags().GetUint64("max-records")
			if err != nil {
				return err
			}
			keys, sizes, err := rpcClient.ListKeys(mode.INCLUSIVE, fromKey, prefix, maxRecords)
			if err != nil {
				return err
			}
			for i, key := range keys {
				if mode.IsSentinel(sizes[i]) {
					continue
				}
				fmt.Printf("%s\n", key)
			}
			return nil
		},
	}
)

func init() {
	listCmd.Flags().Uint64("max-records", 100, "Maximum number of keys to return")
}
