package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/vaila-multimodaltoolbox/vaila/files"
	"github.com/vaila-multimodaltoolbox/vaila/ui"
)

func (c *CLI) newFilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Batch operations on data files",
	}
	cmd.AddCommand(
		c.newFilesRenameCmd(),
		c.newFilesCopyCmd(),
		c.newFilesMoveCmd(),
		c.newFilesRemoveCmd(),
		c.newFilesTreeCmd(),
		c.newFilesFindCmd(),
		c.newFilesTransferCmd(),
		c.newFilesBackupCmd(),
	)
	return cmd
}

func (c *CLI) newFilesRenameCmd() *cobra.Command {
	var ext, oldText, newText string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "rename <root>",
		Short: "Rename files by replacing text in their names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			renames, err := files.RenameFiles(args[0], ext, oldText, newText, dryRun)
			if err != nil {
				return err
			}
			for _, rename := range renames {
				cmd.Println(rename.Old + " -> " + rename.New)
			}
			if dryRun {
				cmd.Printf("%d file(s) would be renamed.\n", len(renames))
			} else {
				cmd.Printf("Renamed %d file(s).\n", len(renames))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&ext, "ext", "", "file extension to match (e.g. csv)")
	cmd.Flags().StringVar(&oldText, "old", "", "text to replace in file names")
	cmd.Flags().StringVar(&newText, "new", "", "replacement text")
	cmd.MarkFlagRequired("ext")
	cmd.MarkFlagRequired("old")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the plan without renaming")
	return cmd
}

func (c *CLI) newFilesCopyCmd() *cobra.Command {
	var ext string

	cmd := &cobra.Command{
		Use:   "copy <root> <dest>",
		Short: "Copy files by extension into a timestamped directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := files.Copy(args[0], args[1], ext, time.Now())
			if err != nil {
				return err
			}
			cmd.Println("Copied into " + dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&ext, "ext", "", "file extension to match (e.g. csv)")
	cmd.MarkFlagRequired("ext")
	return cmd
}

func (c *CLI) newFilesMoveCmd() *cobra.Command {
	var ext string

	cmd := &cobra.Command{
		Use:   "move <root> <dest>",
		Short: "Move files by extension into a timestamped directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := files.Move(args[0], args[1], ext, time.Now())
			if err != nil {
				return err
			}
			cmd.Println("Moved into " + dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&ext, "ext", "", "file extension to match (e.g. csv)")
	cmd.MarkFlagRequired("ext")
	return cmd
}

func (c *CLI) newFilesRemoveCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove <root> <pattern>",
		Short: "Delete files matching a pattern",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !ui.Confirm("Delete files matching "+args[1]+" under "+args[0]+"?", false) {
				return nil
			}
			removed, err := files.Remove(args[0], args[1])
			if err != nil {
				return err
			}
			for _, path := range removed {
				cmd.Println(path)
			}
			cmd.Printf("Removed %d file(s).\n", len(removed))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (c *CLI) newFilesTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree <root>",
		Short: "Write a recursive listing of a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := files.Tree(args[0], time.Now())
			if err != nil {
				return err
			}
			cmd.Println("Wrote " + path)
			return nil
		},
	}
}

func (c *CLI) newFilesFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <root> <pattern>",
		Short: "Find files matching a pattern",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			matches, err := files.Find(args[0], args[1])
			if err != nil {
				return err
			}
			for _, match := range matches {
				cmd.Println(match.Path + " (" + files.SizeString(match.Size) + ")")
			}
			return nil
		},
	}
}

func (c *CLI) newFilesTransferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <source> <destination>",
		Short: "Copy files to a remote host via rsync or scp",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ui.StartSpinner(&ui.SpinnerCfg{Message: "Transferring " + args[0]})
			err := files.Transfer(cmd.Context(), c.runner, args[0], args[1])
			ui.StopSpinner("")
			return err
		},
	}
}

func (c *CLI) newFilesBackupCmd() *cobra.Command {
	var restore bool

	cmd := &cobra.Command{
		Use:   "backup <root> <archive>",
		Short: "Archive a data directory (tar + zstd)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if restore {
				if err := files.RestoreBackup(args[1], args[0]); err != nil {
					return err
				}
				cmd.Println("Restored " + args[1] + " into " + args[0])
				return nil
			}
			if err := files.Backup(args[0], args[1]); err != nil {
				return err
			}
			cmd.Println("Wrote " + args[1])
			return nil
		},
	}
	cmd.Flags().BoolVar(&restore, "restore", false, "restore the archive into root instead")
	return cmd
}
