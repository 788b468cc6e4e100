package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"backoffice/models"
	"backoffice/services/notification"

	"github.com/spf13/cobra"
)

func notificationsCmd(env *cliEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notif"},
		Short:   "Read and follow the console notification feed",
	}
	cmd.AddCommand(notificationsListCmd(env))
	cmd.AddCommand(notificationsWatchCmd(env))
	cmd.AddCommand(notificationsReadCmd(env))
	cmd.AddCommand(notificationsDeleteCmd(env))
	cmd.AddCommand(notificationsSendCmd(env))
	return cmd
}

func notificationsListCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the current feed and unread count",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := env.Client()
			if err != nil {
				return err
			}
			items, err := c.List(cmd.Context())
			if err != nil {
				return err
			}
			unread, err := c.UnreadCount(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, n := range items {
				printNotification(out, n)
			}
			fmt.Fprintf(out, "%d unread\n", unread)
			return nil
		},
	}
}

func notificationsWatchCmd(env *cliEnv) *cobra.Command {
	var poll, subscribeTimeout time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow new notifications until interrupted",
		Long: `Follow the notification feed. The push stream is used when it can be
opened within --subscribe-timeout; otherwise the feed is polled every --poll.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := env.Client()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ch := notification.NewChannel(c,
				notification.WithPollInterval(poll),
				notification.WithSubscribeTimeout(subscribeTimeout),
				notification.WithChannelLogger(env.Logger()),
			)
			return watch(ctx, ch, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().DurationVar(&poll, "poll", notification.DefaultPollInterval, "polling interval when the stream is unavailable")
	cmd.Flags().DurationVar(&subscribeTimeout, "subscribe-timeout", notification.DefaultSubscribeTimeout, "how long to wait for the push stream")
	return cmd
}

// watch runs ch until ctx ends, printing mode changes, new notifications and
// backend errors.
func watch(ctx context.Context, ch *notification.Channel, out, errOut io.Writer) error {
	var (
		mu       sync.Mutex
		seen     = map[string]bool{}
		lastMode notification.Mode = -1
	)
	ch.OnChange(func(s notification.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if s.Mode != lastMode {
			fmt.Fprintf(out, "-- %s (%d unread)\n", s.Mode, s.UnreadCount)
			lastMode = s.Mode
		}
		for i := len(s.Notifications) - 1; i >= 0; i-- {
			n := s.Notifications[i]
			if !seen[n.ID] {
				seen[n.ID] = true
				printNotification(out, n)
			}
		}
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for err := range ch.Errors() {
			fmt.Fprintln(errOut, "warning:", err)
		}
	}()

	if err := ch.Start(ctx); err != nil {
		fmt.Fprintln(errOut, "initial load failed:", err)
	}
	<-ctx.Done()
	ch.Close()
	wg.Wait()
	return nil
}

func notificationsReadCmd(env *cliEnv) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "read [id]",
		Short: "Mark one notification, or all with --all, as read",
		Args: func(cmd *cobra.Command, args []string) error {
			if all {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := env.Client()
			if err != nil {
				return err
			}
			if all {
				return c.MarkAllRead(cmd.Context())
			}
			return c.MarkRead(cmd.Context(), args[0])
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "mark every notification as read")
	return cmd
}

func notificationsDeleteCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := env.Client()
			if err != nil {
				return err
			}
			return c.Delete(cmd.Context(), args[0])
		},
	}
}

func notificationsSendCmd(env *cliEnv) *cobra.Command {
	var (
		draft models.NotificationDraft
		kind  string
		at    string
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Create a notification for every console user",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := env.Client()
			if err != nil {
				return err
			}
			draft.Type = models.NotificationType(kind)
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("--at: %w", err)
				}
				draft.DeliverAt = t
			}
			res, err := c.CreateNotification(cmd.Context(), draft)
			if err != nil {
				return err
			}
			if res.TaskID != "" {
				fmt.Fprintln(cmd.OutOrStdout(), "queued as", res.TaskID)
				return nil
			}
			printNotification(cmd.OutOrStdout(), *res.Notification)
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "type", "t", string(models.NotificationInfo), "notification type")
	cmd.Flags().StringVar(&draft.Title, "title", "", "title")
	cmd.Flags().StringVarP(&draft.Message, "message", "m", "", "message body")
	cmd.Flags().StringVar(&at, "at", "", "deliver at this RFC 3339 time instead of now")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func printNotification(w io.Writer, n models.Notification) {
	mark := "*"
	if n.Read {
		mark = " "
	}
	fmt.Fprintf(w, "%s %s  [%s] %s", mark, n.Timestamp.Local().Format("Jan 02 15:04"), n.Type, n.Title)
	if n.Message != "" {
		fmt.Fprintf(w, ": %s", n.Message)
	}
	fmt.Fprintf(w, "  (%s)\n", n.ID)
}
