package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muurk/sonoslink/internal/sonos"
	"github.com/muurk/sonoslink/internal/ui"
)

var roomName string

func init() {
	for _, c := range []*cobra.Command{playCmd, pauseCmd, nextCmd, trackCmd} {
		c.Flags().StringVar(&roomName, "room", "", "Room (zone name) whose group to control; defaults to the first group")
		rootCmd.AddCommand(c)
	}
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start playback on a room's group",
	Example: `  sonoslink play --room Kitchen
  sonoslink play --device 192.168.1.69 --room "Living Room"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransport(cmd, "Playing", (*sonos.Device).Play)
	},
}

var pauseCmd = &cobra.Command{
	Use:     "pause",
	Short:   "Pause playback on a room's group",
	Example: `  sonoslink pause --room Kitchen`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransport(cmd, "Paused", (*sonos.Device).Pause)
	},
}

var nextCmd = &cobra.Command{
	Use:     "next",
	Short:   "Skip to the next track on a room's group",
	Example: `  sonoslink next --room Kitchen`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransport(cmd, "Skipped to next track", (*sonos.Device).Next)
	},
}

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Show the track playing on a room's group",
	Example: `  sonoslink track --room Kitchen
  sonoslink track --room Kitchen --format json`,
	RunE: runTrack,
}

func runTransport(cmd *cobra.Command, done string, action func(*sonos.Device) error) error {
	group, err := selectGroup(cmd)
	if err != nil {
		return err
	}
	if err := action(group); err != nil {
		return err
	}

	ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess(done, map[string]string{
		"Group":       group.String(),
		"Coordinator": group.IP(),
	})
	return nil
}

func runTrack(cmd *cobra.Command, args []string) error {
	if err := checkFormat(outputFormat); err != nil {
		return err
	}
	group, err := selectGroup(cmd)
	if err != nil {
		return err
	}

	track, err := group.CurrentTrack()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case outputFormat == formatJSON:
		return writeJSON(out, track)
	case track == nil:
		ui.NewPrinter(out).PrintWarning("Nothing playing", map[string]string{"Group": group.Name()})
	case outputFormat == formatCompact:
		fmt.Fprintln(out, track.String())
	default:
		ui.NewPrinter(out).PrintSuccess(track.Title, map[string]string{
			"Artist":   track.Artist,
			"Album":    track.Album,
			"Position": track.Position + " / " + track.Duration,
			"Group":    group.Name(),
		})
	}
	return nil
}

// selectGroup discovers the groups and picks the one containing --room
func selectGroup(cmd *cobra.Command) (*sonos.Device, error) {
	registry := loadRegistry()
	groups, err := discoverGroups(cmd.Context(), cmd.ErrOrStderr(), registry)
	if err != nil {
		return nil, err
	}
	return pickGroup(groups, roomName)
}

func pickGroup(groups []*sonos.Device, room string) (*sonos.Device, error) {
	if len(groups) == 0 {
		return nil, fmt.Errorf("no zone groups reported")
	}
	if room == "" {
		return groups[0], nil
	}
	if g := sonos.FindByName(groups, room); g != nil {
		return g, nil
	}
	var rooms []string
	for _, g := range groups {
		rooms = append(rooms, g.Rooms()...)
	}
	return nil, fmt.Errorf("no room named %q (found: %v)", room, rooms)
}
