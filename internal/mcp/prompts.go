package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("build_landing",
		mcp.WithPromptDescription("Guide through building a conversion-focused landing page for a business"),
		mcp.WithArgument("business",
			mcp.ArgumentDescription("Business type, e.g. 'palestra' or 'studio di coaching'"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("goal",
			mcp.ArgumentDescription("What a visitor should do, e.g. 'prenotare una prova gratuita'"),
		),
	), s.handleBuildLandingPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("clone_competitor",
		mcp.WithPromptDescription("Analyze a competitor page and build an improved version of it"),
		mcp.WithArgument("url",
			mcp.ArgumentDescription("Competitor landing page URL"),
			mcp.RequiredArgument(),
		),
	), s.handleCloneCompetitorPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("improve_conversion",
		mcp.WithPromptDescription("Review an existing page and tighten it for conversions"),
		mcp.WithArgument("pageId",
			mcp.ArgumentDescription("Page to review"),
			mcp.RequiredArgument(),
		),
	), s.handleImproveConversionPrompt)
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.TextContent{Type: "text", Text: text},
			},
		},
	}
}

func (s *Server) handleBuildLandingPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	business := req.Params.Arguments["business"]
	goal := req.Params.Arguments["goal"]
	if goal == "" {
		goal = "lasciare i propri contatti"
	}
	return userPrompt(fmt.Sprintf("Build a landing page for %s", business), fmt.Sprintf(`Build a landing page for a %s whose visitors should %s. Follow these steps:

1. Use list_templates and pick the closest template, then create_page with it
2. Use list_blocks to see what the template gave you
3. Rewrite hero, features and CTA copy with update_block_settings so it speaks to the target audience
4. Make sure there is exactly one form block capturing name and email; add one with add_block if missing
5. Add social proof (testimonials or socialProof) near the form
6. Finish with page_history to confirm every step was recorded

Keep copy short and concrete. Do not remove blocks unless they clearly do not fit.`, business, goal)), nil
}

func (s *Server) handleCloneCompetitorPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	url := req.Params.Arguments["url"]
	return userPrompt(fmt.Sprintf("Clone and improve %s", url), fmt.Sprintf(`Build an improved version of the competitor page at %s. Follow these steps:

1. Run synthesize_from_url with url=%s; the new page becomes the active page
2. Review the generated blocks with list_blocks and get_block
3. Strengthen weak headlines and vague CTAs with update_block_settings
4. Use reorder_blocks so the offer and the form appear early
5. Add a countdown block if the offer is time-limited

Never copy the competitor's brand names or testimonials verbatim.`, url, url)), nil
}

func (s *Server) handleImproveConversionPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	pageID := req.Params.Arguments["pageId"]
	return userPrompt(fmt.Sprintf("Improve conversions of page %s", pageID), fmt.Sprintf(`Review page %s for conversion. Follow these steps:

1. set_active_page with pageId=%s, then get_page
2. Check that the hero states one clear benefit and has a single primary CTA
3. Check that every CTA points to the form and the form asks for as little as possible
4. Propose your edits as assistant_apply calls using update_all with one change per block
5. Summarize what you changed and why it should convert better`, pageID, pageID)), nil
}
