package main

import (
	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{Use: "concierged"}

	root.AddCommand(serveCMD(), indexCMD(), migrateCMD())
	_ = root.Execute()
}
