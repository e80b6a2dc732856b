package sqlinline

// Integration tokens hold credentials of outbound providers (smtp, exchange)
// keyed by provider name.

const QSelectIntegrationToken = `--sql 7b5f7833-8239-44f1-8456-8b27b6ae2a39
select token from integration_tokens where provider = $1::text;
`

const QUpsertIntegrationToken = `--sql 4a496c34-84a6-4b02-a915-0e8e9c07a198
insert into integration_tokens as t (provider, token, properties)
values ($1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb))
on conflict (provider) do update
set token = excluded.token,
    properties = t.properties || excluded.properties,
    updated_at = now();
`

const QDeleteIntegrationToken = `--sql d5ebbc12-e06a-4e42-9699-f5dd868dc550
delete from integration_tokens where provider = $1::text;
`
