package xapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"net/url"
	"strings"
)

const (
	postDetailQueryID   = "-Ls3CrSQNo2fRKH6i6Na1A"
	postByRestIDQueryID = "wqi5M7wZ7tW-X9S2t-Mqcg"
)

var postDetailFeatures = map[string]bool{
	"rweb_lists_timeline_redesign_enabled":                                    true,
	"responsive_web_graphql_exclude_directive_enabled":                        true,
	"verified_phone_label_enabled":                                            false,
	"creator_subscriptions_tweet_preview_api_enabled":                         true,
	"responsive_web_graphql_timeline_navigation_enabled":                      true,
	"responsive_web_graphql_skip_user_profile_image_extensions_enabled":       false,
	"tweetypie_unmention_optimization_enabled":                                true,
	"responsive_web_edit_tweet_api_enabled":                                   true,
	"graphql_is_translatable_rweb_tweet_is_translatable_enabled":              true,
	"view_counts_everywhere_api_enabled":                                      true,
	"longform_notetweets_consumption_enabled":                                 true,
	"responsive_web_twitter_article_tweet_consumption_enabled":                false,
	"tweet_awards_web_tipping_enabled":                                        false,
	"freedom_of_speech_not_reach_fetch_enabled":                               true,
	"standardized_nudges_misinfo":                                             true,
	"tweet_with_visibility_results_prefer_gql_limited_actions_policy_enabled": true,
	"longform_notetweets_rich_text_read_enabled":                              true,
	"longform_notetweets_inline_media_enabled":                                true,
	"responsive_web_media_download_video_enabled":                             false,
	"responsive_web_enhance_cards_enabled":                                    false,
}

// sharedFeatures are sent by both the guest post lookup and the audio
// room lookup.
var sharedFeatures = map[string]bool{
	"creator_subscriptions_tweet_preview_api_enabled":                         true,
	"premium_content_api_read_enabled":                                        false,
	"communities_web_enable_tweet_community_results_fetch":                    true,
	"c9s_tweet_anatomy_moderator_badge_enabled":                               true,
	"responsive_web_grok_analyze_button_fetch_trends_enabled":                 false,
	"responsive_web_jetfuel_frame":                                            true,
	"responsive_web_grok_share_attachment_enabled":                            true,
	"articles_preview_enabled":                                                true,
	"responsive_web_edit_tweet_api_enabled":                                   true,
	"graphql_is_translatable_rweb_tweet_is_translatable_enabled":              true,
	"view_counts_everywhere_api_enabled":                                      true,
	"longform_notetweets_consumption_enabled":                                 true,
	"responsive_web_twitter_article_tweet_consumption_enabled":                true,
	"tweet_awards_web_tipping_enabled":                                        false,
	"responsive_web_grok_show_grok_translated_post":                           false,
	"responsive_web_grok_analysis_button_from_backend":                        false,
	"creator_subscriptions_quote_tweet_preview_enabled":                       false,
	"freedom_of_speech_not_reach_fetch_enabled":                               true,
	"standardized_nudges_misinfo":                                             true,
	"tweet_with_visibility_results_prefer_gql_limited_actions_policy_enabled": true,
	"longform_notetweets_rich_text_read_enabled":                              true,
	"longform_notetweets_inline_media_enabled":                                true,
	"payments_enabled":                                                        false,
	"profile_label_improvements_pcf_label_in_post_enabled":                    true,
	"rweb_tipjar_consumption_enabled":                                         true,
	"verified_phone_label_enabled":                                            false,
	"responsive_web_grok_image_annotation_enabled":                            true,
	"responsive_web_grok_imagine_annotation_enabled":                          true,
	"responsive_web_grok_community_note_auto_translation_is_enabled":          false,
	"responsive_web_graphql_skip_user_profile_image_extensions_enabled":       false,
	"responsive_web_graphql_timeline_navigation_enabled":                      true,
	"responsive_web_enhance_cards_enabled":                                    false,
}

func guestPostFeatures() map[string]bool {
	features := maps.Clone(sharedFeatures)
	features["responsive_web_grok_analyze_post_followups_enabled"] = false
	return features
}

func audioRoomFeatures() map[string]bool {
	features := maps.Clone(sharedFeatures)
	maps.Copy(features, map[string]bool{
		"spaces_2022_h2_spaces_communities":                  true,
		"spaces_2022_h2_clipping":                            true,
		"rweb_xchat_enabled":                                 true,
		"responsive_web_grok_analyze_post_followups_enabled": true,
	})
	return features
}

// graphqlURL encodes each parameter group as a JSON query value. Nil
// groups are omitted.
func graphqlURL(base, queryID, operation string, variables, features, fieldToggles any) (string, error) {
	var params []string
	for _, p := range []struct {
		name  string
		value any
	}{
		{"variables", variables},
		{"features", features},
		{"fieldToggles", fieldToggles},
	} {
		if p.value == nil {
			continue
		}
		encoded, err := json.Marshal(p.value)
		if err != nil {
			return "", fmt.Errorf("failed to encode %s: %w", p.name, err)
		}
		params = append(params, p.name+"="+url.QueryEscape(string(encoded)))
	}

	return base + "/" + queryID + "/" + operation + "?" + strings.Join(params, "&"), nil
}

// FetchPostDetail returns the raw payload for a post. Authenticated
// sessions use TweetDetail and fall back to the guest lookup on failure.
func (c *Client) FetchPostDetail(ctx context.Context, id string) ([]byte, error) {
	if c.authenticated() {
		data, err := c.fetchAuthenticatedDetail(ctx, id)
		if err == nil {
			return data, nil
		}
		slog.Warn("Authenticated post request failed, falling back to guest", "post", id, "error", err)
	}

	return c.fetchGuestDetail(ctx, id)
}

func (c *Client) fetchAuthenticatedDetail(ctx context.Context, id string) ([]byte, error) {
	variables := map[string]any{
		"focalTweetId":                           id,
		"cursor":                                 "",
		"referrer":                               "tweet",
		"with_rux_injections":                    false,
		"includePromotedContent":                 true,
		"withCommunity":                          true,
		"withQuickPromoteEligibilityTweetFields": true,
		"withBirdwatchNotes":                     true,
		"withVoice":                              true,
		"withV2Timeline":                         true,
	}
	fieldToggles := map[string]bool{
		"withAuxiliaryUserLabels":     false,
		"withArticleRichContentState": false,
	}

	target, err := graphqlURL(c.siteBase+"/i/api/graphql", postDetailQueryID, "TweetDetail", variables, postDetailFeatures, fieldToggles)
	if err != nil {
		return nil, err
	}

	return c.do(ctx, target, request{retry: true})
}

func (c *Client) fetchGuestDetail(ctx context.Context, id string) ([]byte, error) {
	if _, err := c.ensureGuestToken(ctx); err != nil {
		return nil, fmt.Errorf("failed to acquire guest token: %w", err)
	}

	variables := map[string]any{
		"tweetId":                id,
		"withCommunity":          false,
		"includePromotedContent": false,
		"withVoice":              false,
	}
	fieldToggles := map[string]bool{
		"withArticleRichContentState": true,
		"withArticlePlainText":        false,
		"withGrokAnalyze":             false,
		"withDisallowedReplyControls": false,
	}

	target, err := graphqlURL(c.apiBase+"/graphql", postByRestIDQueryID, "TweetResultByRestId", variables, guestPostFeatures(), fieldToggles)
	if err != nil {
		return nil, err
	}

	return c.do(ctx, target, request{retry: true, forceGuest: true})
}

// FetchAudioRoom returns the raw AudioSpaceById payload for a room.
func (c *Client) FetchAudioRoom(ctx context.Context, roomID, queryID string) ([]byte, error) {
	base := c.siteBase + "/i/api/graphql"
	if !c.authenticated() {
		base = c.apiBase + "/graphql"
		if _, err := c.ensureGuestToken(ctx); err != nil {
			slog.Warn("Guest token not available for audio room request", "room", roomID, "error", err)
		}
	}

	variables := map[string]any{
		"id":              roomID,
		"isMetatagsQuery": false,
		"withReplays":     true,
		"withListeners":   true,
	}

	target, err := graphqlURL(base, queryID, "AudioSpaceById", variables, audioRoomFeatures(), nil)
	if err != nil {
		return nil, err
	}

	return c.do(ctx, target, request{retry: true})
}
