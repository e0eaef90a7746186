// Package flowcorpus keeps a corpus of per-module user flow documents
// consistent with the source documents they cite.
//
// For every configured module the pipeline loads the module document
// (whatever its top level shape), folds citations into source_documents,
// normalizes reference paths, resolves them against the asset store with a
// fuzzy suggestion on miss, assigns related_flows and writes the document
// back in its original shape:
//
//	srv, _ := flowcorpus.New(flowcorpus.WithConfig(config))
//	result, _ := srv.Run(ctx, flowcorpus.ModeValidate)
//	_ = result.WriteText(os.Stdout)
//
// Validate runs never write; fix runs rewrite documents atomically unless a
// dry run was requested.
package flowcorpus
