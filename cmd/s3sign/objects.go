package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/wzshiming/s3sign/pkg/objstore"
	"github.com/wzshiming/s3sign/pkg/sigv4"
)

func (o *options) newClient() (*objstore.Client, error) {
	return objstore.New(o.cfg.Storage, objstore.WithLogger(o.logger))
}

// contentTypeFor guesses the MIME type from the file extension
func contentTypeFor(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "application/octet-stream"
}

func newPutCommand(opts *options) *cobra.Command {
	var contentType string

	cmd := &cobra.Command{
		Use:   "put ID FILE",
		Short: "Upload FILE as object ID",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, path := args[0], args[1]

			body, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			if contentType == "" {
				contentType = contentTypeFor(path)
			}

			client, err := opts.newClient()
			if err != nil {
				return err
			}
			if err := client.Upload(cmd.Context(), id, body, contentType); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), client.ObjectURL(id))
			return nil
		},
	}
	cmd.Flags().StringVar(&contentType, "content-type", "", "MIME type of the object (default from the file extension)")
	return cmd
}

func newDeleteCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete object ID, succeeding when it is already gone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.newClient()
			if err != nil {
				return err
			}
			return client.Delete(cmd.Context(), args[0])
		},
	}
}

func newSignCommand(opts *options) *cobra.Command {
	var (
		payloadHash string
		contentType string
	)

	cmd := &cobra.Command{
		Use:   "sign METHOD ID",
		Short: "Print the signing material for a request without sending it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.newClient()
			if err != nil {
				return err
			}

			var extra []sigv4.Header
			if contentType != "" {
				extra = append(extra, sigv4.Header{Name: "content-type", Value: contentType})
			}
			m := client.Sign(args[0], args[1], extra, payloadHash, time.Now())

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "# Canonical request\n%s\n\n", m.CanonicalRequest)
			fmt.Fprintf(w, "# String to sign\n%s\n\n", m.StringToSign)
			fmt.Fprintf(w, "# Signing key\n%s\n\n", m.SigningKey.Hex())
			fmt.Fprintf(w, "# Signature\n%s\n\n", m.Signature)
			fmt.Fprintf(w, "# Headers\nX-Amz-Date: %s\nAuthorization: %s\n", m.Timestamp, m.Authorization)
			return nil
		},
	}
	cmd.Flags().StringVar(&payloadHash, "payload-hash", "", "Hex SHA-256 of the body (default UNSIGNED-PAYLOAD)")
	cmd.Flags().StringVar(&contentType, "content-type", "", "Content type to include in the signed headers")
	return cmd
}
