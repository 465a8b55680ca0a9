// Package output renders extraction results as YAML or JSON.
//
// # Output Types
//
//   - Report: per-file results of one extract run plus a summary
//   - FileResult: the declarations of one file, or the error that aborted it
//   - DeclarationView: a declaration trimmed to the requested density
//
// # Density Modes
//
//   - Sparse: declaration names and nesting only
//   - Medium (default): names, type signatures as written, nesting
//   - Dense: everything, including the structural type tree, prose and
//     source lines
//
// # Usage
//
//	formatter, err := output.GetFormatter(output.FormatYAML)
//	if err != nil {
//	    return err
//	}
//	return formatter.FormatToWriter(os.Stdout, report, output.DensityMedium)
package output
