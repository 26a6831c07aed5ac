package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/inference-sim/pisim/sim/gpu"
)

// devicesCmd lists the devices the gpu algorithm can run on
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List devices available to the gpu algorithm",
	Run: func(cmd *cobra.Command, args []string) {
		printDevices(os.Stdout, gpu.Devices())
	},
}

func printDevices(w io.Writer, devices []gpu.DeviceInfo) {
	if len(devices) == 0 {
		fmt.Fprintln(w, "No compatible devices found.")
		return
	}
	for _, d := range devices {
		fmt.Fprintf(w, "[%d] %s  max threads/block=%d  SMs=%d\n",
			d.ID, d.Name, d.MaxThreadsPerBlock, d.Multiprocessors)
	}
}
