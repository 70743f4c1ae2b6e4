// Package printing provides infrastructure implementations for agreement document
// generation: loading template and font assets, drawing field text onto a canvas,
// and exporting the canvas as a PDF or PNG file.
//
// This package contains:
// - AssetSource interface for reading template and font assets, with FileSystemAssets
// - TemplateLoader for existence checks and decoding of template images
// - FontResolver resolving a font asset to faces, with a built-in fallback font
// - CanvasRenderer drawing a FieldSet onto a copy of the template
// - DocumentExporter serializing a canvas with an atomic write
// - OutputStorage interface and FileSystemStorage handing out unique output paths
// - LayoutStore loading layout definitions from YAML on top of the built-in default
// - CheckAssets and EnsureDirs used when provisioning a deployment
//
// Example usage:
//
//	assets := NewFileSystemAssets("static")
//	tmpl, err := NewTemplateLoader(assets).Load(ctx, layout.Template())
//	if err != nil {
//	    return err
//	}
//	faces, err := NewFontResolver(assets, logger).ResolveSizes(ctx, layout.Font(), layout.Sizes()...)
//	if err != nil {
//	    return err
//	}
//	defer faces.Close()
//
//	canvas, err := NewCanvasRenderer(logger).Render(ctx, tmpl, fields, layout, faces)
//	if err != nil {
//	    return err
//	}
//	_, err = NewDocumentExporter(nil).Export(ctx, canvas, agreement.FormatPDF, "/tmp/out.pdf")
package printing
