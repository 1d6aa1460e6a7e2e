// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// upload_cmd.go - document upload handler.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/scholar-tui/internal/api"
)

// HandleUpload registers a PDF with the backend and prints its document
// id, which the TUI's document chat (or the API) can use afterwards.
func HandleUpload(client *api.Client, args Args) int {
	if args.File == "" {
		fmt.Fprintln(os.Stderr, "usage: scholar upload <file.pdf>")
		return 1
	}
	if !strings.HasSuffix(strings.ToLower(args.File), ".pdf") {
		fmt.Fprintf(os.Stderr, "%s does not look like a PDF\n", args.File)
		return 1
	}

	f, err := os.Open(args.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open %s: %v\n", args.File, err)
		return 1
	}
	defer f.Close()

	result, err := client.UploadDocument(context.Background(), args.File, f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "upload failed: %v\n", err)
		return 1
	}

	fmt.Println(result.PDFID)
	return 0
}
