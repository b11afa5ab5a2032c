package main

import (
	"github.com/spf13/cobra"
)

var caption string

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Share an image or video",
	Long:  `Upload a png, jpg, jpeg, mp4, avi, mov, mkv or webm file with an optional caption.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		views, sess, err := setup(cmd)
		if err != nil {
			return err
		}
		return views.UploadView(cmd.Context(), sess, args[0], caption)
	},
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show all posts, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		views, sess, err := setup(cmd)
		if err != nil {
			return err
		}
		return views.FeedView(cmd.Context(), sess)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [post-id]",
	Short: "Delete one of your posts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		views, sess, err := setup(cmd)
		if err != nil {
			return err
		}
		return views.DeleteView(cmd.Context(), sess, args[0])
	},
}

func init() {
	uploadCmd.Flags().StringVar(&caption, "caption", "", "Caption for the post")
}
