package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coderco/eks-platform/internal/publish"
)

// Environment variables holding static S3 credentials.
const (
	accessKeyEnv = "EKS_PLATFORM_S3_ACCESS_KEY"
	secretKeyEnv = "EKS_PLATFORM_S3_SECRET_KEY"
)

func newPublishCmd() *cobra.Command {
	var (
		bucket       string
		prefix       string
		region       string
		endpoint     string
		pathStyle    bool
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "publish [dir]",
		Short: "Upload an assembly to S3",
		Long: `Publish uploads a written assembly to S3 under <prefix>/<sha256>/, where
the digest covers every file of the assembly. An assembly that is already
present is not uploaded again.

Credentials come from the default AWS chain unless ` + accessKeyEnv + ` and
` + secretKeyEnv + ` are set.

Examples:
    eks-platform publish --bucket my-artifacts
    eks-platform publish out --bucket my-artifacts --prefix platform
    eks-platform publish --bucket dev --endpoint http://localhost:9000 --path-style`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutputFormat(outputFormat); err != nil {
				return err
			}
			dir := DefaultOutputDir
			if len(args) == 1 {
				dir = args[0]
			}

			client, err := publish.NewClient(cmd.Context(), publish.ClientOptions{
				Region:    region,
				Endpoint:  endpoint,
				PathStyle: pathStyle,
				AccessKey: os.Getenv(accessKeyEnv),
				SecretKey: os.Getenv(secretKeyEnv),
			})
			if err != nil {
				return err
			}

			result, err := publish.New(client, bucket, prefix).Publish(cmd.Context(), dir)
			if err != nil {
				return err
			}
			return outputPublishResult(cmd, result, outputFormat)
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "Target S3 bucket")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix")
	cmd.Flags().StringVar(&region, "bucket-region", "", "Region of the bucket (default: from the AWS configuration)")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Custom S3 endpoint")
	cmd.Flags().BoolVar(&pathStyle, "path-style", false, "Use path-style bucket addressing")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	_ = cmd.MarkFlagRequired("bucket")

	return cmd
}

func outputPublishResult(cmd *cobra.Command, result *publish.Result, format string) error {
	w := cmd.OutOrStdout()
	if format == "json" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	if result.Unchanged {
		fmt.Fprintf(w, "Already published: %s\n", result.ManifestURI)
		return nil
	}
	for _, obj := range result.Objects {
		fmt.Fprintf(w, "  s3://%s/%s (%d bytes)\n", result.Bucket, obj.Key, obj.Size)
	}
	fmt.Fprintf(w, "Published %s\n", result.ManifestURI)
	return nil
}
