// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package frameworklink

import (
	"context"
	"strings"

	"github.com/kraklabs/cie-graph/pkg/djangotmpl"
	"github.com/kraklabs/cie-graph/pkg/graphmodel"
	"github.com/kraklabs/cie-graph/pkg/ingestor"
)

// Linker is a narrower, Go-idiomatic rework of
// original_source/codebase_rag/parsers/frameworks/framework_linker.py's
// FrameworkLinker. The Python original covers roughly two dozen framework
// integrations across every extension in the repo in one 1800-line sweep;
// this port keeps the same dispatch-by-extension shape and the same
// regex-driven extraction idiom, wiring every domain SPEC_FULL.md's
// DOMAIN STACK names: ASP.NET Core, Gin/Echo/Fiber/Chi, Laravel/Symfony
// routing, Blade views, WordPress hooks/REST routes/shortcodes/blocks/
// enqueues, Eloquent model relations, Next.js Pages and App Router API
// routes, HTMX element scanning, DI (C#/Spring/NestJS), and JS/TS client
// request detection (fetch/axios/GraphQL). Tailwind and Django template
// linking live in the sibling pkg/tailwind and pkg/djangotmpl packages.
type Linker struct {
	ProjectName string
	Sink        ingestor.Sink

	// TemplateIndex resolves a Django render()/template_name reference to
	// a repo-relative file path (see pkg/djangotmpl.BuildTemplateIndex).
	// Left nil, .py files are still scanned for view/template references
	// but no RENDERS_VIEW edge is emitted since there is nothing to
	// resolve the reference against.
	TemplateIndex map[string]string

	// BladeViewIndex resolves a Blade view('name') reference to a
	// repo-relative file path (see BuildBladeViewIndex). Left nil, .php
	// files are still scanned for view() calls but no RENDERS_VIEW edge
	// is emitted.
	BladeViewIndex map[string]string
}

// NewLinker constructs a Linker bound to a sink and project name.
func NewLinker(projectName string, sink ingestor.Sink) *Linker {
	return &Linker{ProjectName: projectName, Sink: sink}
}

// LinkFile dispatches to the appropriate extractor(s) for filePath's
// extension and source content, and ensures the resulting nodes/edges in
// the sink. moduleQN is the file's already-resolved module QN.
func (l *Linker) LinkFile(ctx context.Context, filePath, moduleQN, source string) error {
	ext := fileExt(filePath)

	var endpoints []Endpoint
	var services []ServiceRegistration

	switch ext {
	case ".cs":
		endpoints = ExtractASPNetEndpoints(source)
		services = ExtractASPNetServices(source)
	case ".go":
		endpoints = ExtractGoWebEndpoints(source)
	case ".php":
		endpoints = ExtractPHPEndpoints(source)
		for _, viewName := range ExtractPHPViews(source) {
			if err := l.linkPHPView(ctx, moduleQN, viewName); err != nil {
				return err
			}
		}
		for _, rel := range ExtractEloquentRelations(source) {
			if err := l.linkEloquentRelation(ctx, moduleQN, rel); err != nil {
				return err
			}
		}
		if IsWordPressContext(filePath, source) {
			endpoints = append(endpoints, ExtractWordPressRestRoutes(source)...)
			for _, hook := range ExtractWordPressHooks(source) {
				if err := l.linkWordPressHook(ctx, moduleQN, hook); err != nil {
					return err
				}
			}
			for _, block := range append(ExtractWordPressShortcodes(source), ExtractWordPressBlocks(source)...) {
				if err := l.linkWordPressBlock(ctx, moduleQN, block); err != nil {
					return err
				}
			}
			for _, asset := range ExtractWordPressEnqueues(source) {
				if err := l.linkAssetEnqueue(ctx, moduleQN, asset); err != nil {
					return err
				}
			}
		}
	case ".java":
		services = ExtractSpringServices(source)
	case ".js", ".jsx", ".ts", ".tsx":
		endpoints = append(endpoints, ExtractJSClientRequests(source)...)
		endpoints = append(endpoints, ExtractNextAPIEndpoints(filePath, source)...)
		services = append(services, ExtractNestServices(source)...)
	case ".py":
		for _, vt := range ExtractDjangoViewTemplates(source) {
			if err := l.linkDjangoView(ctx, moduleQN, vt); err != nil {
				return err
			}
		}
	case ".html":
		endpoints = append(endpoints, ExtractHTMXEndpoints(source)...)
	}

	for _, ep := range endpoints {
		if err := l.linkEndpoint(ctx, moduleQN, ep); err != nil {
			return err
		}
	}
	for _, svc := range services {
		if err := l.linkService(ctx, moduleQN, svc); err != nil {
			return err
		}
	}
	return nil
}

func (l *Linker) linkPHPView(ctx context.Context, moduleQN, viewName string) error {
	targetPath, ok := ResolveBladeViewPath(l.BladeViewIndex, viewName)
	if !ok {
		return nil
	}
	targetQN := djangotmpl.FileQN(l.ProjectName, targetPath)
	if err := l.Sink.EnsureNode(ctx, graphmodel.LabelFile, targetQN, targetPath, nil, true); err != nil {
		return err
	}
	return l.Sink.EnsureRelationship(ctx,
		graphmodel.NewRef(graphmodel.LabelModule, moduleQN), graphmodel.RelRendersView,
		graphmodel.NewRef(graphmodel.LabelFile, targetQN),
		map[string]any{"relation_type": "blade"})
}

func (l *Linker) linkEloquentRelation(ctx context.Context, moduleQN string, rel EloquentRelation) error {
	sourceQN := moduleQN + "." + rel.SourceClass
	if err := l.Sink.EnsureNode(ctx, graphmodel.LabelClass, sourceQN, rel.SourceClass, nil, true); err != nil {
		return err
	}
	targetQN := l.ProjectName + ".model." + rel.TargetClass
	if err := l.Sink.EnsureNode(ctx, graphmodel.LabelClass, targetQN, rel.TargetClass, nil, true); err != nil {
		return err
	}
	return l.Sink.EnsureRelationship(ctx,
		graphmodel.NewRef(graphmodel.LabelClass, sourceQN), graphmodel.RelEloquentRelation,
		graphmodel.NewRef(graphmodel.LabelClass, targetQN),
		map[string]any{"relation_type": rel.RelationType})
}

func (l *Linker) linkWordPressHook(ctx context.Context, moduleQN string, hook HookBinding) error {
	hookQN := l.ProjectName + ".hook." + hook.Kind + "." + hook.HookName
	if err := l.Sink.EnsureNode(ctx, graphmodel.LabelHook, hookQN, hook.HookName,
		map[string]any{"hook_kind": hook.Kind}, false); err != nil {
		return err
	}

	source := graphmodel.NewRef(graphmodel.LabelModule, moduleQN)
	if hook.HandlerName != "" {
		handlerQN := moduleQN + "." + hook.HandlerName
		if err := l.Sink.EnsureNode(ctx, graphmodel.LabelFunction, handlerQN, hook.HandlerName, nil, true); err != nil {
			return err
		}
		source = graphmodel.NewRef(graphmodel.LabelFunction, handlerQN)
	}
	return l.Sink.EnsureRelationship(ctx, source, graphmodel.RelHooks,
		graphmodel.NewRef(graphmodel.LabelHook, hookQN),
		map[string]any{"relation_type": "wordpress_" + hook.Kind})
}

func (l *Linker) linkWordPressBlock(ctx context.Context, moduleQN string, block BlockBinding) error {
	blockQN := l.ProjectName + ".block." + block.Kind + "." + block.Name
	if err := l.Sink.EnsureNode(ctx, graphmodel.LabelBlock, blockQN, block.Name,
		map[string]any{"block_kind": block.Kind}, false); err != nil {
		return err
	}

	source := graphmodel.NewRef(graphmodel.LabelModule, moduleQN)
	if block.HandlerName != "" {
		handlerQN := moduleQN + "." + block.HandlerName
		if err := l.Sink.EnsureNode(ctx, graphmodel.LabelFunction, handlerQN, block.HandlerName, nil, true); err != nil {
			return err
		}
		source = graphmodel.NewRef(graphmodel.LabelFunction, handlerQN)
	}
	return l.Sink.EnsureRelationship(ctx, source, graphmodel.RelRegistersBlock,
		graphmodel.NewRef(graphmodel.LabelBlock, blockQN),
		map[string]any{"relation_type": block.Kind})
}

func (l *Linker) linkAssetEnqueue(ctx context.Context, moduleQN string, asset AssetEnqueue) error {
	assetQN := l.ProjectName + ".asset." + asset.AssetType + "." + asset.Handle
	if err := l.Sink.EnsureNode(ctx, graphmodel.LabelAsset, assetQN, asset.Handle,
		map[string]any{"asset_type": asset.AssetType, "path": asset.Path}, false); err != nil {
		return err
	}
	return l.Sink.EnsureRelationship(ctx,
		graphmodel.NewRef(graphmodel.LabelModule, moduleQN), graphmodel.RelUsesAsset,
		graphmodel.NewRef(graphmodel.LabelAsset, assetQN),
		map[string]any{"relation_type": "wp_enqueue_" + asset.AssetType})
}

func (l *Linker) linkDjangoView(ctx context.Context, moduleQN string, vt DjangoViewTemplate) error {
	targetPath, ok := djangotmpl.ResolveTemplatePath(l.TemplateIndex, vt.TemplateName)
	if !ok {
		return nil
	}
	targetQN := djangotmpl.FileQN(l.ProjectName, targetPath)
	if err := l.Sink.EnsureNode(ctx, graphmodel.LabelFile, targetQN, targetPath, nil, true); err != nil {
		return err
	}

	source := graphmodel.NewRef(graphmodel.LabelModule, moduleQN)
	switch {
	case vt.HandlerName == "":
	case vt.ControllerName == vt.HandlerName:
		source = graphmodel.NewRef(graphmodel.LabelClass, moduleQN+"."+vt.ControllerName)
		if err := l.Sink.EnsureNode(ctx, graphmodel.LabelClass, source.QualifiedName, vt.ControllerName, nil, true); err != nil {
			return err
		}
	case vt.ControllerName != "":
		source = graphmodel.NewRef(graphmodel.LabelMethod, moduleQN+"."+vt.ControllerName+"."+vt.HandlerName)
		if err := l.Sink.EnsureNode(ctx, graphmodel.LabelMethod, source.QualifiedName, vt.HandlerName, nil, true); err != nil {
			return err
		}
	default:
		source = graphmodel.NewRef(graphmodel.LabelFunction, moduleQN+"."+vt.HandlerName)
		if err := l.Sink.EnsureNode(ctx, graphmodel.LabelFunction, source.QualifiedName, vt.HandlerName, nil, true); err != nil {
			return err
		}
	}

	return l.Sink.EnsureRelationship(ctx, source, graphmodel.RelRendersView,
		graphmodel.NewRef(graphmodel.LabelFile, targetQN),
		map[string]any{"relation_type": "django"})
}

func (l *Linker) linkEndpoint(ctx context.Context, moduleQN string, ep Endpoint) error {
	endpointQN := ep.QualifiedName(l.ProjectName)
	if err := l.Sink.EnsureNode(ctx, graphmodel.LabelEndpoint, endpointQN, ep.Method+" "+NormalizePath(ep.Path),
		map[string]any{"framework": ep.Framework, "method": ep.Method, "path": NormalizePath(ep.Path)}, false); err != nil {
		return err
	}

	if ep.HandlerName != "" {
		handlerQN := moduleQN + "." + ep.HandlerName
		if ep.ControllerName != "" {
			handlerQN = moduleQN + "." + ep.ControllerName + "." + ep.HandlerName
			controllerQN := moduleQN + "." + ep.ControllerName
			if err := l.Sink.EnsureNode(ctx, graphmodel.LabelClass, controllerQN, ep.ControllerName, nil, true); err != nil {
				return err
			}
			if err := l.Sink.EnsureRelationship(ctx,
				graphmodel.NewRef(graphmodel.LabelEndpoint, endpointQN), graphmodel.RelRoutesToController,
				graphmodel.NewRef(graphmodel.LabelClass, controllerQN), nil); err != nil {
				return err
			}
		}
		if err := l.Sink.EnsureNode(ctx, graphmodel.LabelFunction, handlerQN, ep.HandlerName, nil, true); err != nil {
			return err
		}
		rel := graphmodel.RelHasEndpoint
		if ep.ControllerName != "" {
			rel = graphmodel.RelRoutesToAction
		}
		if err := l.Sink.EnsureRelationship(ctx,
			graphmodel.NewRef(graphmodel.LabelFunction, handlerQN), rel,
			graphmodel.NewRef(graphmodel.LabelEndpoint, endpointQN), nil); err != nil {
			return err
		}
	} else if ep.Framework == "http" || ep.Framework == "graphql" {
		if err := l.Sink.EnsureRelationship(ctx,
			graphmodel.NewRef(graphmodel.LabelModule, moduleQN), graphmodel.RelRequestsEndpoint,
			graphmodel.NewRef(graphmodel.LabelEndpoint, endpointQN),
			map[string]any{"relation_type": "http_request"}); err != nil {
			return err
		}
	} else if ep.Framework == "htmx" {
		props := map[string]any{"relation_type": "htmx"}
		for k, v := range ep.Metadata {
			props[k] = v
		}
		if err := l.Sink.EnsureRelationship(ctx,
			graphmodel.NewRef(graphmodel.LabelModule, moduleQN), graphmodel.RelRequestsEndpoint,
			graphmodel.NewRef(graphmodel.LabelEndpoint, endpointQN), props); err != nil {
			return err
		}
	} else {
		// No handler could be bound (e.g. a WordPress REST callback we
		// couldn't resolve, or a Next.js App Router file with no exported
		// method handler): still attach a fallback edge so the routing
		// fact isn't lost entirely.
		if err := l.Sink.EnsureRelationship(ctx,
			graphmodel.NewRef(graphmodel.LabelModule, moduleQN), graphmodel.RelHasEndpoint,
			graphmodel.NewRef(graphmodel.LabelEndpoint, endpointQN), nil); err != nil {
			return err
		}
	}
	return nil
}

func (l *Linker) linkService(ctx context.Context, moduleQN string, svc ServiceRegistration) error {
	serviceQN := moduleQN + ".service." + svc.TypeName
	props := map[string]any{"framework": svc.Framework}
	if svc.Lifetime != "" {
		props["lifetime"] = svc.Lifetime
	}
	if err := l.Sink.EnsureNode(ctx, graphmodel.LabelClass, serviceQN, svc.TypeName, props, true); err != nil {
		return err
	}
	return l.Sink.EnsureRelationship(ctx,
		graphmodel.NewRef(graphmodel.LabelModule, moduleQN), graphmodel.RelRegistersService,
		graphmodel.NewRef(graphmodel.LabelClass, serviceQN), props)
}

func fileExt(path string) string {
	idx := strings.LastIndex(path, ".")
	if idx == -1 {
		return ""
	}
	return strings.ToLower(path[idx:])
}
