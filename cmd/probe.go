// Package cmd holds the auxiliary CLI commands.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/camgate/camgate/internal/camera"
	"github.com/camgate/camgate/internal/config"
	"github.com/camgate/camgate/internal/ffmpeg"
)

// probeOptions mirrors the camera settings of the main command so the same
// config file and environment drive both.
type probeOptions struct {
	Config          string
	CameraIP        string `toml:"camera.ip" env:"CAMERA_IP"`
	CameraPort      string `toml:"camera.port" env:"CAMERA_PORT"`
	CameraURISuffix string `toml:"camera.uri_suffix" env:"CAMERA_URI_SUFFIX"`
	CameraUsername  string `toml:"camera.username" env:"CAMERA_USERNAME"`
	CameraPassword  string `toml:"camera.password" env:"CAMERA_PASSWORD"`
	StreamIndex     string `toml:"camera.stream_index" env:"STREAM_INDEX"`
	FFmpegPath      string `toml:"decoder.ffmpeg_path" env:"FFMPEG_PATH"`
}

// CreateProbeCmd creates the probe command. It resolves the camera
// configuration exactly as the main command would and prints, per camera,
// the entity path, the masked source URL and the decoder command line,
// without launching anything.
func CreateProbeCmd() *cobra.Command {
	var opts probeOptions

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Print the resolved camera configuration",
		Long: `Resolves the comma-separated camera settings into per-camera configs and ` +
			`prints each camera's entity path, source URL (password masked) and decoder ` +
			`command line. No subprocess is started; use this to verify a deployment's ` +
			`settings before running the gateway.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadConfig(&opts, cmd); err != nil {
				return err
			}

			cameras, err := config.ParseCameras(config.CameraSettings{
				IP:          opts.CameraIP,
				Port:        opts.CameraPort,
				URISuffix:   opts.CameraURISuffix,
				Username:    opts.CameraUsername,
				Password:    opts.CameraPassword,
				StreamIndex: opts.StreamIndex,
			})
			if err != nil {
				return err
			}

			ffmpegPath := opts.FFmpegPath
			if ffmpegPath == "" {
				ffmpegPath = "ffmpeg"
			}

			for i, cam := range cameras {
				masked := cam
				if masked.Password != "" {
					masked.Password = "*****"
				}
				args := ffmpeg.BuildDecodeArgs(&ffmpeg.DecodeOptions{
					URL:         camera.BuildURL(masked),
					StreamIndex: cam.StreamIndex,
				})

				fmt.Fprintf(os.Stdout, "camera %d\n", i)
				fmt.Fprintf(os.Stdout, "  entity path: %s\n", camera.EntityPath(camera.BuildURL(cam)))
				fmt.Fprintf(os.Stdout, "  source url:  %s\n", camera.MaskedURL(cam))
				fmt.Fprintf(os.Stdout, "  decoder:     %s %s\n", ffmpegPath, strings.Join(args, " "))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "config.toml", "Path to configuration file")
	cmd.Flags().StringVar(&opts.CameraIP, "camera-ip", "", "Comma-separated camera hosts")
	cmd.Flags().StringVar(&opts.CameraPort, "camera-port", "", "Comma-separated RTSP ports")
	cmd.Flags().StringVar(&opts.CameraURISuffix, "camera-uri-suffix", "", "Comma-separated stream path suffixes")
	cmd.Flags().StringVar(&opts.CameraUsername, "camera-username", "", "Comma-separated usernames")
	cmd.Flags().StringVar(&opts.CameraPassword, "camera-password", "", "Comma-separated passwords")
	cmd.Flags().StringVar(&opts.StreamIndex, "stream-index", "", "Comma-separated video sub-stream indices")
	cmd.Flags().StringVar(&opts.FFmpegPath, "ffmpeg-path", "", "Path to the ffmpeg binary")

	return cmd
}
