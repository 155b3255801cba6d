// Package doctoolkit converts uploaded documents: office files to PDF,
// images to and from PDF, and structural PDF edits.
//
// # Upload Lifecycle
//
// Every request follows the same path:
//
//  1. Stage: the upload stream is written to the scratch uploads directory
//     under a random name that keeps the original extension.
//  2. Dispatch: one Toolkit operation transforms the staged file(s).
//     Office documents go through LibreOffice, PDFs through pdfcpu and
//     MuPDF, Markdown and HTML through headless Chrome.
//  3. Archive: plural outputs (split pages, rendered images) are zipped.
//  4. Release: every path the request touched is registered in a
//     CleanupSet and deleted once the response is sent, or immediately on
//     failure. A Sweeper deletes anything older than the retention window.
//
// # Usage
//
//	scratch, err := doctoolkit.NewScratch("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tk := doctoolkit.New(scratch, doctoolkit.WithLogger(logger))
//	defer tk.Close()
//
//	set := doctoolkit.NewCleanupSet(logger)
//	defer set.Release()
//
//	staged, err := tk.Stage(upload, "Report.DOCX")
//	if err != nil {
//	    return err
//	}
//	set.Add(staged.Path)
//
//	pdf, err := tk.OfficeToPDF(ctx, staged.Path)
//	if err != nil {
//	    return err
//	}
//	set.Add(pdf)
//
// # Errors
//
// All errors wrap one of ErrInvalidInput, ErrMalformedRequest, ErrNotFound,
// ErrConversion or ErrStorage. Office renderer failures are returned as
// *RenderError with the command line, exit code and captured output.
package doctoolkit
