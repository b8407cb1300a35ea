/*
Package cli provides command-line utilities shared by the mentat command.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	if err := srv.Start(ctx); err != nil {
		return err
	}

Error Types:

ConfigError and CommandError give command failures a consistent shape for
the root command's error output.
*/
package cli
