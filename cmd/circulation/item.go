package main

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-circulation/circulation/command"
	"github.com/AntonStoeckl/library-circulation/circulation/core"
	"github.com/AntonStoeckl/library-circulation/circulation/query/itemhistory"
	"github.com/AntonStoeckl/library-circulation/circulation/query/itemstatus"
	"github.com/AntonStoeckl/library-circulation/circulation/query/patronholds"
	"github.com/AntonStoeckl/library-circulation/circulation/shell"
)

const dateLayout = time.DateOnly

func newItemCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Run circulation commands and queries for one item",
	}

	cmd.AddCommand(
		newItemAddCommand(c),
		newItemLoanCommand(c),
		newItemRequestCommand(c),
		newItemLibraryCommand(c, "return", "Check a loaned item in",
			command.BuildReturnItem,
			func(svc *service) commandRunner[command.ReturnItem] { return svc.commands.ReturnItem },
		),
		newItemLibraryCommand(c, "receive", "Register the arrival of an item in transit",
			command.BuildReceiveItem,
			func(svc *service) commandRunner[command.ReceiveItem] { return svc.commands.ReceiveItem },
		),
		newItemSimpleCommand(c, "validate", "Pull a shelved item for its first request",
			command.BuildValidateItemRequest,
			func(svc *service) commandRunner[command.ValidateItemRequest] { return svc.commands.ValidateItemRequest },
		),
		newItemExtendCommand(c),
		newItemSimpleCommand(c, "lose", "Declare an item missing",
			command.BuildLoseItem,
			func(svc *service) commandRunner[command.LoseItem] { return svc.commands.LoseItem },
		),
		newItemSimpleCommand(c, "found", "Put a missing item back on the shelf",
			command.BuildReturnMissingItem,
			func(svc *service) commandRunner[command.ReturnMissingItem] { return svc.commands.ReturnMissingItem },
		),
		newItemCancelHoldCommand(c),
		newItemStatusCommand(c),
		newItemHistoryCommand(c),
	)

	return cmd
}

func newPatronCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patron",
		Short: "Query the holds of a patron",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "holds PATRON_ID",
		Short: "List the loans and pending requests of a patron",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd, func(ctx context.Context, svc *service) error {
				holds, err := svc.queries.PatronHolds.Handle(ctx, patronholds.BuildQuery(args[0]))
				if err != nil {
					return err
				}

				if c.jsonOutput {
					return c.printJSON(cmd, holds)
				}

				for _, loan := range holds.Loans {
					c.printf(cmd, "loan     %s  hold %s  due %s\n", loan.ItemID, loan.HoldID, formatDate(loan.EndDate))
				}
				for _, request := range holds.Requests {
					c.printf(cmd, "request  %s  hold %s  pickup %s\n", request.ItemID, request.HoldID, request.PickupLibraryID)
				}

				return nil
			})
		},
	})

	return cmd
}

type commandRunner[C command.Command] interface {
	Handle(ctx context.Context, command C) (shell.HandlerResult, error)
}

func (c *cli) withService(cmd *cobra.Command, fn func(ctx context.Context, svc *service) error) error {
	ctx := shell.WithCorrelationID(cmd.Context(), shell.NewMessageID())

	svc, err := c.openService(ctx)
	if err != nil {
		return err
	}

	runErr := fn(ctx, svc)

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.ShutdownTimeout)
	defer cancel()

	if closeErr := svc.close(shutdownCtx); closeErr != nil {
		c.logger.Warn("closing service failed", "error", closeErr.Error())
	}

	return runErr
}

func runCommand[C command.Command](c *cli, cmd *cobra.Command, pick func(*service) commandRunner[C], build func() C) error {
	return c.withService(cmd, func(ctx context.Context, svc *service) error {
		result, err := pick(svc).Handle(ctx, build())
		if err != nil {
			return err
		}

		if c.jsonOutput {
			return c.printJSON(cmd, result)
		}

		c.printf(cmd, "%s: item is %s", result.EventType, result.ItemStatus)
		if result.HoldID != "" {
			c.printf(cmd, " (hold %s)", result.HoldID)
		}
		c.printf(cmd, "\n")

		return nil
	})
}

func newItemAddCommand(c *cli) *cobra.Command {
	var library, itemType string

	cmd := &cobra.Command{
		Use:   "add ITEM_ID",
		Short: "Put a new item on the shelf of its home library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(c, cmd,
				func(svc *service) commandRunner[command.AddItemToCirculation] { return svc.commands.AddItemToCirculation },
				func() command.AddItemToCirculation {
					return command.BuildAddItemToCirculation(args[0], library, itemType, time.Now())
				})
		},
	}

	cmd.Flags().StringVar(&library, "library", "", "home library id (required)")
	cmd.Flags().StringVar(&itemType, "type", "", "item type selecting the loan duration (required)")
	_ = cmd.MarkFlagRequired("library")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

type patronFlags struct {
	id      string
	barcode string
	pickup  string
}

func (f *patronFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.id, "patron", "", "patron id (required)")
	cmd.Flags().StringVar(&f.barcode, "barcode", "", "patron card barcode")
	cmd.Flags().StringVar(&f.pickup, "pickup", "", "pickup library id")
	_ = cmd.MarkFlagRequired("patron")
}

func (f *patronFlags) patron() core.Patron {
	return core.Patron{ID: f.id, Barcode: f.barcode}
}

func newItemLoanCommand(c *cli) *cobra.Command {
	var patron patronFlags
	var start, end string

	cmd := &cobra.Command{
		Use:   "loan ITEM_ID",
		Short: "Check an item out to a patron",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate, err := parseDate(start)
			if err != nil {
				return err
			}

			endDate, err := parseDate(end)
			if err != nil {
				return err
			}

			return runCommand(c, cmd,
				func(svc *service) commandRunner[command.LoanItem] { return svc.commands.LoanItem },
				func() command.LoanItem {
					return command.BuildLoanItem(args[0], patron.patron(), patron.pickup, startDate, endDate, time.Now())
				})
		},
	}

	patron.register(cmd)
	cmd.Flags().StringVar(&start, "start", "", "loan start date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&end, "end", "", "loan end date YYYY-MM-DD (default by item type)")

	return cmd
}

func newItemRequestCommand(c *cli) *cobra.Command {
	var patron patronFlags

	cmd := &cobra.Command{
		Use:   "request ITEM_ID",
		Short: "Queue a request of a patron",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(c, cmd,
				func(svc *service) commandRunner[command.RequestItem] { return svc.commands.RequestItem },
				func() command.RequestItem {
					return command.BuildRequestItem(args[0], patron.patron(), patron.pickup, time.Now())
				})
		},
	}

	patron.register(cmd)

	return cmd
}

func newItemLibraryCommand[C command.Command](
	c *cli,
	use string,
	short string,
	build func(itemID, libraryID string, now time.Time) C,
	pick func(*service) commandRunner[C],
) *cobra.Command {

	var library string

	cmd := &cobra.Command{
		Use:   use + " ITEM_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(c, cmd, pick, func() C { return build(args[0], library, time.Now()) })
		},
	}

	cmd.Flags().StringVar(&library, "library", "", "library where the transaction happens (required)")
	_ = cmd.MarkFlagRequired("library")

	return cmd
}

func newItemSimpleCommand[C command.Command](
	c *cli,
	use string,
	short string,
	build func(itemID string, now time.Time) C,
	pick func(*service) commandRunner[C],
) *cobra.Command {

	return &cobra.Command{
		Use:   use + " ITEM_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(c, cmd, pick, func() C { return build(args[0], time.Now()) })
		},
	}
}

func newItemExtendCommand(c *cli) *cobra.Command {
	var end string
	var renewals int

	cmd := &cobra.Command{
		Use:   "extend ITEM_ID",
		Short: "Renew the active loan of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			endDate, err := parseDate(end)
			if err != nil {
				return err
			}

			var renewalCount *int
			if cmd.Flags().Changed("renewals") {
				renewalCount = &renewals
			}

			return runCommand(c, cmd,
				func(svc *service) commandRunner[command.ExtendLoan] { return svc.commands.ExtendLoan },
				func() command.ExtendLoan {
					return command.BuildExtendLoan(args[0], endDate, renewalCount, time.Now())
				})
		},
	}

	cmd.Flags().StringVar(&end, "end", "", "new end date YYYY-MM-DD (default current end plus loan duration)")
	cmd.Flags().IntVar(&renewals, "renewals", 0, "renewal count to record (default current count plus one)")

	return cmd
}

func newItemCancelHoldCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel-hold ITEM_ID HOLD_ID",
		Short: "Withdraw a pending request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(c, cmd,
				func(svc *service) commandRunner[command.CancelHold] { return svc.commands.CancelHold },
				func() command.CancelHold { return command.BuildCancelHold(args[0], args[1], time.Now()) })
		},
	}
}

func newItemStatusCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status ITEM_ID",
		Short: "Show the status and hold queue of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd, func(ctx context.Context, svc *service) error {
				view, err := svc.queries.ItemStatus.Handle(ctx, itemstatus.BuildQuery(args[0]))
				if err != nil {
					return err
				}

				if c.jsonOutput {
					return c.printJSON(cmd, view)
				}

				c.printf(cmd, "%s (%s, home %s): %s, %d pending requests\n",
					view.ItemID, view.ItemType, view.HomeLibraryID, view.Status, view.PendingRequests)
				for i, hold := range view.Holds {
					c.printf(cmd, "%2d. %-7s %s  patron %s\n", i+1, hold.Kind, hold.HoldID, hold.PatronID)
				}

				return nil
			})
		},
	}
}

func newItemHistoryCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "history ITEM_ID",
		Short: "Show the events of an item in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd, func(ctx context.Context, svc *service) error {
				history, err := svc.queries.ItemHistory.Handle(ctx, itemhistory.BuildQuery(args[0]))
				if err != nil {
					return err
				}

				if c.jsonOutput {
					return c.printJSON(cmd, history)
				}

				for _, entry := range history.Entries {
					c.printf(cmd, "%s  %-24s correlation %s\n",
						entry.OccurredAt.Format(time.RFC3339), entry.EventType, entry.CorrelationID)
				}

				return nil
			})
		},
	}
}

func (c *cli) printJSON(cmd *cobra.Command, value any) error {
	output, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}

	c.printf(cmd, "%s\n", output)

	return nil
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}

	date, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", raw, err)
	}

	return date, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}

	return t.Format(dateLayout)
}
