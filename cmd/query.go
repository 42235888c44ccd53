package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/skyops/app"
	"github.com/kilianp07/skyops/core/engine"
	"github.com/kilianp07/skyops/core/request"
	"github.com/kilianp07/skyops/pkg/export"
)

func init() {
	rootCmd.AddCommand(
		queryCmd(),
		pilotsCmd(),
		dronesCmd(),
		conflictsCmd(),
		costCmd(),
		availabilityCmd(),
		summaryCmd(),
		assignCmd(),
		statusCmd(),
	)
}

// handle decodes kind and params into a request, runs it and prints the
// response. Partially committed mutations print the response before the error.
func handle(cmd *cobra.Command, kind string, params map[string]string) error {
	req, err := request.Decode(kind, params)
	if err != nil {
		return err
	}
	return withService(cmd.Context(), func(ctx context.Context, svc *app.Service) error {
		resp, err := svc.Engine.Handle(ctx, req)
		if err != nil && !errors.Is(err, engine.ErrProvider) {
			return err
		}
		if perr := render(os.Stdout, resp); perr != nil {
			return perr
		}
		return err
	})
}

func queryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <query_type> [key=value...]",
		Short: "Run any request by type, e.g. query find_pilots mission_id=PRJ001",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := make(map[string]string, len(args)-1)
			for _, kv := range args[1:] {
				k, v, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("parameter %q must be key=value", kv)
				}
				params[k] = v
			}
			return handle(cmd, args[0], params)
		},
	}
}

func pilotsCmd() *cobra.Command {
	p := map[string]*string{}
	var locationFilter bool
	cmd := &cobra.Command{
		Use:   "pilots",
		Short: "Find pilots for a mission, by attributes or by date",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := collect(p)
			if locationFilter {
				params["location_filter"] = "true"
			}
			return handle(cmd, string(request.KindFindPilots), params)
		},
	}
	for _, f := range []string{"mission_id", "skill", "certification", "location", "date"} {
		p[f] = cmd.Flags().String(flagName(f), "", strings.ReplaceAll(f, "_", " "))
	}
	cmd.Flags().BoolVar(&locationFilter, "location-filter", false, "require the mission location")
	return cmd
}

func dronesCmd() *cobra.Command {
	p := map[string]*string{}
	var locationFilter bool
	cmd := &cobra.Command{
		Use:   "drones",
		Short: "Find drones compatible with a mission or matching attributes",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := collect(p)
			if locationFilter {
				params["location_filter"] = "true"
			}
			return handle(cmd, string(request.KindFindDrones), params)
		},
	}
	for _, f := range []string{"mission_id", "capability", "weather_rating", "location"} {
		p[f] = cmd.Flags().String(flagName(f), "", strings.ReplaceAll(f, "_", " "))
	}
	cmd.Flags().BoolVar(&locationFilter, "location-filter", false, "require the mission location")
	return cmd
}

func conflictsCmd() *cobra.Command {
	var missionID, format string
	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "Run a detection pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				return handle(cmd, string(request.KindCheckConflicts), map[string]string{"mission_id": missionID})
			}
			return withService(cmd.Context(), func(ctx context.Context, svc *app.Service) error {
				resp, err := svc.Engine.Handle(ctx, request.CheckConflicts{MissionID: missionID})
				if err != nil {
					return err
				}
				return export.Write(os.Stdout, format, resp.Detection.Conflicts)
			})
		},
	}
	cmd.Flags().StringVar(&missionID, "mission-id", "", "only conflicts involving this mission")
	cmd.Flags().StringVar(&format, "export", "", "export format: json, csv or html")
	return cmd
}

func costCmd() *cobra.Command {
	var missionID, pilot string
	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Estimate mission cost, or project the cost of adding a pilot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return handle(cmd, string(request.KindCalculateCosts), map[string]string{
				"mission_id": missionID,
				"pilot_name": pilot,
			})
		},
	}
	cmd.Flags().StringVar(&missionID, "mission-id", "", "mission to cost")
	cmd.Flags().StringVar(&pilot, "pilot", "", "pilot to add hypothetically")
	return cmd
}

func availabilityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "availability",
		Short: "Show every pilot's status and the missions they could take",
		RunE: func(cmd *cobra.Command, args []string) error {
			return handle(cmd, string(request.KindGetAvailability), nil)
		},
	}
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show roster counts and the current conflict summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return handle(cmd, string(request.KindGetSummary), nil)
		},
	}
}

func assignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Assign a pilot or drone to a mission",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "pilot <name> <mission_id>",
		Short: "Assign a pilot and mark them On Mission",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handle(cmd, string(request.KindAssignPilot), map[string]string{
				"pilot_name": args[0], "mission_id": args[1],
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "drone <drone_id> <mission_id>",
		Short: "Assign a drone and mark it Deployed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handle(cmd, string(request.KindAssignDrone), map[string]string{
				"drone_id": args[0], "mission_id": args[1],
			})
		},
	})
	return cmd
}

func statusCmd() *cobra.Command {
	var entity, reason string
	cmd := &cobra.Command{
		Use:   "status <key> <status>",
		Short: "Update a pilot or drone status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handle(cmd, string(request.KindUpdateStatus), map[string]string{
				"entity_type": entity,
				"key":         args[0],
				"status":      args[1],
				"reason":      reason,
			})
		},
	}
	cmd.Flags().StringVar(&entity, "entity", "pilot", "pilot or drone")
	cmd.Flags().StringVar(&reason, "reason", "", "free-form reason")
	return cmd
}

func flagName(param string) string { return strings.ReplaceAll(param, "_", "-") }

func collect(flags map[string]*string) map[string]string {
	out := make(map[string]string, len(flags))
	for k, v := range flags {
		if *v != "" {
			out[k] = *v
		}
	}
	return out
}
