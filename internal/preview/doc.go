// Package preview decides which provider can render a preview for a file and
// bounds how many renderings run at the same time.
//
// The Manager is the entry point. It owns a Registry of mimetype patterns, each
// mapping to an ordered list of ProviderFactory values. Patterns are tried in
// descending order of their string length, and factories under one pattern in
// registration order:
//
//	mgr := preview.NewManager(cfg, preview.NewCoreBootstrapper(cfg, probe, providers.Catalogue()), loader)
//	mgr.SetDelegate(generator)
//
//	if mgr.IsAvailable(file) {
//	    p, err := mgr.GetPreview(ctx, file, 256, 256, true, preview.ModeFill, "")
//	}
//
// Built-in providers are registered lazily on first use by the CoreBootstrapper,
// gated by configuration and by what the FeatureProbe reports about the host
// (libvips formats, office and video converter binaries). Providers declared by
// plugins are pulled through the ExternalLoader on every public call.
//
// A factory that cannot produce a provider is skipped silently. Only errors from
// the generation Delegate reach the caller.
package preview
