/*
 * MIT License
 *
 * Copyright (c) 2026 Nguyen Thanh Phuong
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/phuonguno98/statpanel/internal/config"
	"github.com/phuonguno98/statpanel/internal/devices"
	"github.com/spf13/cobra"
)

var listInterfacesCmd = &cobra.Command{
	Use:     "list-interfaces",
	Aliases: []string{"list-devices"},
	Short:   "List network interfaces and disks the panel can report",
	Long: `List the network interfaces and disk devices available on the system,
and show which interface the panel would select with the current preference list.

Examples:
  # List everything
  statpanel list-interfaces

  # Check the selection for a custom preference order
  statpanel list-interfaces --interfaces wlan0,eth0`,
	RunE: runListInterfaces,
}

func init() {
	rootCmd.AddCommand(listInterfacesCmd)

	listInterfacesCmd.Flags().StringSlice("interfaces", config.DefaultInterfaces,
		"Network interface preference order")
}

func runListInterfaces(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	fmt.Println("\n========================================")
	fmt.Println("   statpanel - Available Devices")
	fmt.Println("========================================")

	// List network interfaces
	networks, err := devices.ListNetworkInterfaces()
	switch {
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error listing network interfaces: %v\n", err)
	case len(networks) == 0:
		fmt.Println("\nNo network interfaces found.")
	default:
		fmt.Print(devices.FormatNetworksTable(networks))
	}

	// Show the interface the slow sampler would pick
	prefs := strings.Join(cfg.Sampler.Interfaces, ",")
	sel, ok, err := devices.SelectInterface(cfg.Sampler.Interfaces)
	switch {
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error selecting interface: %v\n", err)
	case !ok:
		fmt.Printf("\nNo interface of %q is up; the panel will show no address.\n", prefs)
	default:
		speed := "unknown"
		if sel.SpeedMbps > 0 {
			speed = fmt.Sprintf("%dMb/s", sel.SpeedMbps)
		}
		fmt.Printf("\nSelected interface: %s (address %s, link %s) from %q\n",
			sel.Name, sel.IPAddress, speed, prefs)
	}

	// List disk devices
	disks, err := devices.ListDisks()
	switch {
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error listing disks: %v\n", err)
	case len(disks) == 0:
		fmt.Println("\nNo disk devices found.")
	default:
		fmt.Print(devices.FormatDisksTable(disks))
		fmt.Printf("\nDisk usage is read from %q; change it with --disk-path on 'statpanel run'.\n",
			cfg.Sampler.DiskPath)
	}

	fmt.Println("\nNotes:")
	fmt.Println("  - Use comma to separate preferred interfaces: --interfaces=\"eth0,wlan0\"")
	fmt.Println("  - The first listed interface that is up wins")
	fmt.Println("  - Link speed drives the network thresholds; wireless links report none")
	fmt.Println()

	return nil
}
